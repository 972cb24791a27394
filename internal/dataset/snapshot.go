package dataset

import (
	"fmt"
	"strings"
)

// Kind tags a column as categorical text or anything else.
type Kind int

const (
	// KindCategorical columns hold free text and accept filters.
	KindCategorical Kind = iota
	// KindOther columns are numeric, date/time or entirely empty.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Column describes one column of a Snapshot.
type Column struct {
	Name  string
	Index int
	Kind  Kind
}

// Row is one record aligned to the snapshot columns. An empty or
// whitespace-only cell is a missing value.
type Row []string

// Snapshot is an immutable, normalized table. It is safe to share between
// sessions: nothing in this package mutates a Snapshot after New returns.
type Snapshot struct {
	name   string
	cols   []Column
	rows   []Row
	byName map[string]int
}

// New normalizes header and records into a Snapshot. Header names are
// trimmed, blank names become "Unnamed: <i>", duplicates get a ".<n>"
// suffix. Records are padded or truncated to the header width and rows
// whose cells are all missing are dropped. Column kinds are inferred once.
func New(name string, header []string, records [][]string) (*Snapshot, error) {
	if len(header) == 0 {
		return nil, ErrEmptyDataset
	}
	names := normalizeHeader(header)
	ncol := len(names)
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, ncol)
		copy(row, rec)
		if rowIsEmpty(row) {
			continue
		}
		rows = append(rows, row)
	}
	s := &Snapshot{
		name:   name,
		cols:   make([]Column, ncol),
		rows:   rows,
		byName: make(map[string]int, ncol),
	}
	for i, n := range names {
		s.cols[i] = Column{Name: n, Index: i, Kind: inferKind(rows, i)}
		s.byName[n] = i
	}
	return s, nil
}

// Name returns the display name of the source (usually the file base name).
func (s *Snapshot) Name() string { return s.name }

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.rows) }

// Width returns the number of columns.
func (s *Snapshot) Width() int { return len(s.cols) }

// Columns returns a copy of the column list in source order.
func (s *Snapshot) Columns() []Column {
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Header returns the column names in source order.
func (s *Snapshot) Header() []string {
	out := make([]string, len(s.cols))
	for i, c := range s.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by exact name.
func (s *Snapshot) Column(name string) (Column, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Column{}, false
	}
	return s.cols[i], true
}

// Cell returns the raw cell text at (row, col).
func (s *Snapshot) Cell(row, col int) string { return s.rows[row][col] }

// Row returns a copy of row i.
func (s *Snapshot) Row(i int) Row {
	out := make(Row, len(s.rows[i]))
	copy(out, s.rows[i])
	return out
}

// Options returns the distinct non-missing values of a column in first-seen
// order. Unknown columns yield nil.
func (s *Snapshot) Options(column string) []string {
	idx, ok := s.byName[column]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.rows {
		v := r[idx]
		if IsMissing(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// MapColumn returns a new Snapshot whose named column has every cell
// replaced by fn(cell). Kinds are carried over unchanged. The receiver is
// not modified. Unknown columns return the receiver itself.
func (s *Snapshot) MapColumn(column string, fn func(string) string) *Snapshot {
	idx, ok := s.byName[column]
	if !ok {
		return s
	}
	rows := make([]Row, len(s.rows))
	for i, r := range s.rows {
		cp := make(Row, len(r))
		copy(cp, r)
		cp[idx] = fn(cp[idx])
		rows[i] = cp
	}
	return &Snapshot{name: s.name, cols: s.Columns(), rows: rows, byName: s.byName}
}

// Caption reports the size of the loaded table.
func (s *Snapshot) Caption() string {
	return fmt.Sprintf("Loaded %d rows × %d columns", s.Len(), s.Width())
}

// IsMissing reports whether a cell value counts as missing.
func IsMissing(v string) bool { return strings.TrimSpace(v) == "" }

func rowIsEmpty(r Row) bool {
	for _, v := range r {
		if !IsMissing(v) {
			return false
		}
	}
	return true
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		n := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if n == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		cand := n
		for k := 1; used[cand]; k++ {
			cand = fmt.Sprintf("%s.%d", n, k)
		}
		used[cand] = true
		out[i] = cand
	}
	return out
}
