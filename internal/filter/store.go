package filter

import "sort"

// State is a point-in-time copy of the store contents.
type State struct {
	Criteria map[string]Criterion
	Global   string
}

// IsEmpty reports whether no criterion and no global keyword is set.
func (s State) IsEmpty() bool {
	return len(s.Criteria) == 0 && s.Global == ""
}

// Columns returns the columns carrying a criterion, sorted.
func (s State) Columns() []string {
	cols := make([]string, 0, len(s.Criteria))
	for c := range s.Criteria {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Store holds the per-column criteria and the global keyword of one
// session. It is not safe for concurrent use; the owning session serializes
// access.
type Store struct {
	criteria map[string]Criterion
	global   string
	rev      uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{criteria: make(map[string]Criterion)}
}

// SetCriterion replaces the criterion for exactly one column.
func (s *Store) SetCriterion(column string, c Criterion) {
	s.criteria[column] = c.clone()
	s.rev++
}

// ClearCriterion removes the criterion for exactly one column.
func (s *Store) ClearCriterion(column string) {
	delete(s.criteria, column)
	s.rev++
}

// SetGlobalKeyword stores the literal global keyword text.
func (s *Store) SetGlobalKeyword(text string) {
	s.global = text
	s.rev++
}

// ClearAll drops every criterion and the global keyword in one step.
func (s *Store) ClearAll() {
	s.criteria = make(map[string]Criterion)
	s.global = ""
	s.rev++
}

// Current returns a deep copy of the store contents.
func (s *Store) Current() State {
	st := State{Criteria: make(map[string]Criterion, len(s.criteria)), Global: s.global}
	for k, c := range s.criteria {
		st.Criteria[k] = c.clone()
	}
	return st
}

// Revision increments on every mutation.
func (s *Store) Revision() uint64 { return s.rev }
