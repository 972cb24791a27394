package filter

import (
	"strings"
)

// CriterionKind is the variant of a per-column criterion.
type CriterionKind int

const (
	// ExactSet keeps rows whose cell equals one of Values.
	ExactSet CriterionKind = iota + 1
	// Keyword keeps rows whose cell contains Values[0], case-insensitively.
	Keyword
	// KeywordSet keeps rows whose cell contains any of Values.
	KeywordSet
)

func (k CriterionKind) String() string {
	switch k {
	case ExactSet:
		return "exact-set"
	case Keyword:
		return "keyword"
	case KeywordSet:
		return "keyword-set"
	default:
		return "unknown"
	}
}

// Criterion restricts the rows kept for one column. Values are stored as
// given; folding happens at evaluation time only. Raw is the literal text the
// user typed, if the criterion came from a text box.
type Criterion struct {
	Kind   CriterionKind
	Values []string
	Raw    string
}

// NewExactSet builds an Exact-set criterion. An empty string member matches
// missing cells.
func NewExactSet(values ...string) Criterion {
	return Criterion{Kind: ExactSet, Values: append([]string(nil), values...)}
}

// NewKeyword builds a single-substring criterion.
func NewKeyword(text string) Criterion {
	return Criterion{Kind: Keyword, Values: []string{text}}
}

// NewKeywordSet builds an any-of-substrings criterion.
func NewKeywordSet(needles ...string) Criterion {
	return Criterion{Kind: KeywordSet, Values: append([]string(nil), needles...)}
}

// IsBlank reports whether the criterion filters nothing: an Exact-set with
// no members, or a keyword variant whose needles are all blank.
func (c Criterion) IsBlank() bool {
	if c.Kind == ExactSet {
		return len(c.Values) == 0
	}
	for _, v := range c.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Display returns the text to echo back into an input box.
func (c Criterion) Display() string {
	if c.Raw != "" {
		return c.Raw
	}
	switch c.Kind {
	case ExactSet:
		return "=" + strings.Join(c.Values, ",")
	case KeywordSet:
		return strings.Join(c.Values, ",")
	default:
		if len(c.Values) > 0 {
			return c.Values[0]
		}
		return ""
	}
}

func (c Criterion) clone() Criterion {
	c.Values = append([]string(nil), c.Values...)
	return c
}

// ParseInput turns the text of a free-text box into a criterion. Blank text
// yields ok == false, meaning "no criterion". A leading "=" selects an
// Exact-set of comma-separated values, text containing a comma becomes a
// Keyword-set and anything else a Keyword. Raw always keeps the literal text.
func ParseInput(text string) (c Criterion, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Criterion{}, false
	}
	switch {
	case strings.HasPrefix(trimmed, "="):
		var values []string
		for _, p := range strings.Split(trimmed[1:], ",") {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		c = NewExactSet(values...)
	case strings.Contains(trimmed, ","):
		c = NewKeywordSet(strings.Split(trimmed, ",")...)
	default:
		c = NewKeyword(trimmed)
	}
	c.Raw = text
	return c, true
}
