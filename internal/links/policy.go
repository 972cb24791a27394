// Package links decides which columns carry hyperlinks and normalizes
// their cells once per snapshot.
package links

import (
	"regexp"
	"strings"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
)

// Strategy records how a Designation was produced.
type Strategy string

const (
	ByName    Strategy = "by-name"
	ByContent Strategy = "by-content"
	None      Strategy = "none"
)

// DefaultNames are the column names treated as link columns when present.
var DefaultNames = []string{"Spec Sheet"}

// DefaultLabel is the display text for a link cell in text surfaces.
const DefaultLabel = "Open"

var linkPattern = regexp.MustCompile(`^https?://.+$`)

// Designation is the ordered set of link columns of a snapshot.
type Designation struct {
	Columns  []string
	Strategy Strategy
}

// Has reports whether column is designated.
func (d Designation) Has(column string) bool {
	for _, c := range d.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Policy detects and normalizes link columns. Named columns are checked
// first; content sniffing runs only when none of them exist.
type Policy struct {
	Names []string
	Label string
}

// NewPolicy returns a policy with the given names, falling back to the
// defaults for empty arguments.
func NewPolicy(names []string, label string) Policy {
	p := Policy{Names: DefaultNames, Label: DefaultLabel}
	if len(names) > 0 {
		p.Names = append([]string(nil), names...)
	}
	if strings.TrimSpace(label) != "" {
		p.Label = label
	}
	return p
}

// Detect returns the link columns of s in column order.
func (p Policy) Detect(s *dataset.Snapshot) Designation {
	var named []string
	for _, c := range s.Columns() {
		for _, n := range p.Names {
			if c.Name == strings.TrimSpace(n) {
				named = append(named, c.Name)
				break
			}
		}
	}
	if len(named) > 0 {
		return Designation{Columns: named, Strategy: ByName}
	}

	var sniffed []string
	for _, c := range s.Columns() {
		for r := 0; r < s.Len(); r++ {
			if IsValid(s.Cell(r, c.Index)) {
				sniffed = append(sniffed, c.Name)
				break
			}
		}
	}
	if len(sniffed) > 0 {
		return Designation{Columns: sniffed, Strategy: ByContent}
	}
	return Designation{Strategy: None}
}

// Apply returns a snapshot whose designated columns hold normalized values.
// The input snapshot is not modified.
func (p Policy) Apply(s *dataset.Snapshot) (*dataset.Snapshot, Designation) {
	d := p.Detect(s)
	out := s
	for _, c := range d.Columns {
		out = out.MapColumn(c, Normalize)
	}
	return out, d
}

// Render returns the display text for a link cell: the label for a valid
// link, "" otherwise.
func (p Policy) Render(value string) string {
	if !IsValid(value) {
		return ""
	}
	if p.Label == "" {
		return DefaultLabel
	}
	return p.Label
}

// IsValid reports whether value, trimmed, is an http(s) URL.
func IsValid(value string) bool {
	return linkPattern.MatchString(strings.TrimSpace(value))
}

// Normalize returns the trimmed value when it is a valid link and "" when
// it is not.
func Normalize(value string) string {
	v := strings.TrimSpace(value)
	if !linkPattern.MatchString(v) {
		return ""
	}
	return v
}
