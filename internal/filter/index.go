package filter

import (
	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/text/cases"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
)

// Index holds the per-snapshot structures the engine evaluates against.
// Build it once per snapshot; it is read-only afterwards and safe to share
// across sessions.
//
// Layout:
//   - all: bitmap of every row ordinal
//   - postings: column -> cell value -> bitmap of rows (categorical columns)
//   - folded: column -> case-folded cell text per row (categorical columns)
type Index struct {
	snap        *dataset.Snapshot
	all         *roaring.Bitmap
	postings    map[string]map[string]*roaring.Bitmap
	folded      map[string][]string
	categorical []string
}

// NewIndex builds the index for s.
func NewIndex(s *dataset.Snapshot) *Index {
	ix := &Index{
		snap:     s,
		all:      roaring.New(),
		postings: make(map[string]map[string]*roaring.Bitmap),
		folded:   make(map[string][]string),
	}
	n := s.Len()
	if n > 0 {
		ix.all.AddRange(0, uint64(n))
	}
	fold := cases.Fold()
	for _, c := range s.Columns() {
		if c.Kind != dataset.KindCategorical {
			continue
		}
		ix.categorical = append(ix.categorical, c.Name)
		values := make(map[string]*roaring.Bitmap)
		text := make([]string, n)
		for r := 0; r < n; r++ {
			v := s.Cell(r, c.Index)
			key := v
			if dataset.IsMissing(v) {
				key = ""
			} else {
				text[r] = fold.String(v)
			}
			bm, ok := values[key]
			if !ok {
				bm = roaring.New()
				values[key] = bm
			}
			bm.Add(uint32(r))
		}
		for _, bm := range values {
			bm.RunOptimize()
		}
		ix.postings[c.Name] = values
		ix.folded[c.Name] = text
	}
	return ix
}

// Snapshot returns the indexed snapshot.
func (ix *Index) Snapshot() *dataset.Snapshot { return ix.snap }

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return ix.snap.Len() }

// Categorical returns the names of the categorical columns in column order.
func (ix *Index) Categorical() []string {
	return append([]string(nil), ix.categorical...)
}

// Count returns how many rows hold exactly value in column. Missing cells
// are counted under "".
func (ix *Index) Count(column, value string) int {
	if bm := ix.posting(column, value); bm != nil {
		return int(bm.GetCardinality())
	}
	return 0
}

func (ix *Index) posting(column, value string) *roaring.Bitmap {
	values, ok := ix.postings[column]
	if !ok {
		return nil
	}
	if dataset.IsMissing(value) {
		value = ""
	}
	return values[value]
}
