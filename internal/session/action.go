package session

import (
	"github.com/KaramelBytes/sheetsift-cli/internal/filter"
)

type actionKind int

const (
	actSetCriterion actionKind = iota + 1
	actClearCriterion
	actSetGlobal
	actClearAll
)

// Action is one user edit applied at the start of a cycle.
type Action struct {
	kind      actionKind
	column    string
	criterion filter.Criterion
	text      string
}

// SetCriterion sets the criterion of one column.
func SetCriterion(column string, c filter.Criterion) Action {
	return Action{kind: actSetCriterion, column: column, criterion: c}
}

// ClearCriterion removes the criterion of one column.
func ClearCriterion(column string) Action {
	return Action{kind: actClearCriterion, column: column}
}

// SetGlobalKeyword sets the cross-column keyword.
func SetGlobalKeyword(text string) Action {
	return Action{kind: actSetGlobal, text: text}
}

// ClearAll resets every criterion and the global keyword.
func ClearAll() Action { return Action{kind: actClearAll} }

// InputAction maps the text of a per-column box to an action: blank text
// clears the column, anything else sets the parsed criterion.
func InputAction(column, text string) Action {
	if c, ok := filter.ParseInput(text); ok {
		return SetCriterion(column, c)
	}
	return ClearCriterion(column)
}

// Trigger names the action for logs and metrics.
func (a Action) Trigger() string {
	switch a.kind {
	case actSetCriterion:
		return "set_criterion"
	case actClearCriterion:
		return "clear_criterion"
	case actSetGlobal:
		return "set_global_keyword"
	case actClearAll:
		return "clear_all"
	default:
		return "unknown"
	}
}

func (a Action) apply(st *filter.Store) {
	switch a.kind {
	case actSetCriterion:
		st.SetCriterion(a.column, a.criterion)
	case actClearCriterion:
		st.ClearCriterion(a.column)
	case actSetGlobal:
		st.SetGlobalKeyword(a.text)
	case actClearAll:
		st.ClearAll()
	}
}

func trigger(actions []Action) string {
	switch len(actions) {
	case 0:
		return "refresh"
	case 1:
		return actions[0].Trigger()
	}
	t := actions[0].Trigger()
	for _, a := range actions[1:] {
		if a.Trigger() != t {
			return "batch"
		}
	}
	return t
}
