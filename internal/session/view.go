package session

import (
	"fmt"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
	"github.com/KaramelBytes/sheetsift-cli/internal/filter"
)

// View is the published result of one cycle. It is immutable and safe to
// read after the session has moved on.
type View struct {
	Seq         uint64
	Trigger     string
	Columns     []dataset.Column
	Rows        []int
	TotalRows   int
	LinkColumns []string
	Warnings    []error
	State       filter.State

	snap   *dataset.Snapshot
	source *dataset.Snapshot
}

// Header returns the column names in snapshot order.
func (v *View) Header() []string {
	h := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		h[i] = c.Name
	}
	return h
}

// Len returns the number of rows in the view.
func (v *View) Len() int { return len(v.Rows) }

// Record returns a copy of the i-th view row as loaded. Export writes these.
func (v *View) Record(i int) []string { return v.source.Row(v.Rows[i]) }

// Display returns a copy of the i-th view row with link cells normalized.
func (v *View) Display(i int) []string { return v.snap.Row(v.Rows[i]) }

// Cell returns the display value at view row i, column index col.
func (v *View) Cell(i, col int) string { return v.snap.Cell(v.Rows[i], col) }

// Ordinal returns the snapshot row index of view row i.
func (v *View) Ordinal(i int) int { return v.Rows[i] }

// IsLink reports whether column is a designated link column.
func (v *View) IsLink(column string) bool {
	for _, c := range v.LinkColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Caption reports the view size against the full dataset.
func (v *View) Caption() string {
	return fmt.Sprintf("Showing %d rows × %d columns (of %d × %d)", len(v.Rows), len(v.Columns), v.TotalRows, len(v.Columns))
}

// Filtered reports whether any criterion or global keyword is active.
func (v *View) Filtered() bool { return !v.State.IsEmpty() }
