package filter

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/cases"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
)

// Result is the outcome of one evaluation: the kept row ordinals in
// ascending (original) order plus non-fatal warnings.
type Result struct {
	Rows     []int
	Warnings []error
}

// Engine evaluates filter states against a prebuilt Index.
type Engine struct {
	ix *Index
}

// NewEngine returns an engine over ix.
func NewEngine(ix *Index) *Engine { return &Engine{ix: ix} }

// Index returns the engine's index.
func (e *Engine) Index() *Index { return e.ix }

// Evaluate builds a fresh index for s and evaluates st against it.
func Evaluate(s *dataset.Snapshot, st State) Result {
	return NewEngine(NewIndex(s)).Evaluate(st)
}

// Evaluate computes the rows satisfying every active condition of st.
// Criteria are AND-ed across columns and with the global keyword. Members
// of an Exact-set or Keyword-set are OR-ed. Criteria that cannot be applied
// are reported in Result.Warnings and otherwise ignored.
func (e *Engine) Evaluate(st State) Result {
	var res Result
	rows := e.ix.all.Clone()
	fold := cases.Fold()

	for _, col := range st.Columns() {
		c := st.Criteria[col]
		if c.IsBlank() {
			continue
		}
		column, ok := e.ix.snap.Column(col)
		if !ok {
			res.Warnings = append(res.Warnings, &ConfigurationError{Column: col})
			continue
		}
		if column.Kind != dataset.KindCategorical {
			res.Warnings = append(res.Warnings, &EvaluationError{
				Column: col,
				Reason: fmt.Sprintf("%s criterion on %s column", c.Kind, column.Kind),
				Err:    ErrKindMismatch,
			})
			continue
		}
		switch c.Kind {
		case ExactSet:
			rows.And(e.exactSet(col, c.Values))
		case Keyword, KeywordSet:
			needles := foldNeedles(fold, c.Values)
			rows = e.keep(rows, func(r uint32) bool {
				return containsAny(e.ix.folded[col][r], needles)
			})
		default:
			res.Warnings = append(res.Warnings, &EvaluationError{
				Column: col,
				Reason: fmt.Sprintf("criterion kind %d", int(c.Kind)),
				Err:    ErrUnsupportedCriterion,
			})
		}
	}

	if strings.TrimSpace(st.Global) != "" {
		needle := fold.String(st.Global)
		rows = e.keep(rows, func(r uint32) bool {
			for _, col := range e.ix.categorical {
				if strings.Contains(e.ix.folded[col][r], needle) {
					return true
				}
			}
			return false
		})
	}

	res.Rows = make([]int, 0, rows.GetCardinality())
	it := rows.Iterator()
	for it.HasNext() {
		res.Rows = append(res.Rows, int(it.Next()))
	}
	return res
}

func (e *Engine) exactSet(col string, values []string) *roaring.Bitmap {
	out := roaring.New()
	for _, v := range values {
		if bm := e.ix.posting(col, v); bm != nil {
			out.Or(bm)
		}
	}
	return out
}

// keep returns the subset of rows for which match holds.
func (e *Engine) keep(rows *roaring.Bitmap, match func(uint32) bool) *roaring.Bitmap {
	out := roaring.New()
	it := rows.Iterator()
	for it.HasNext() {
		if r := it.Next(); match(r) {
			out.Add(r)
		}
	}
	return out
}

// foldNeedles drops blank needles and folds the rest as typed.
func foldNeedles(fold cases.Caser, values []string) []string {
	needles := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			needles = append(needles, fold.String(v))
		}
	}
	return needles
}

// containsAny reports whether text contains one of needles. Missing cells
// are indexed as "" and never match.
func containsAny(text string, needles []string) bool {
	if text == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
