package session

import (
	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
	"github.com/KaramelBytes/sheetsift-cli/internal/filter"
	"github.com/KaramelBytes/sheetsift-cli/internal/links"
)

// Shared is the read-only part of every session over one dataset: the
// loaded snapshot with its filter index and offered options, plus the
// link-normalized copy views display. Build it once; sessions never mutate
// it.
type Shared struct {
	source  *dataset.Snapshot
	snap    *dataset.Snapshot
	links   links.Designation
	policy  links.Policy
	bounds  dataset.OptionBounds
	engine  *filter.Engine
	options map[string][]string
}

// NewShared indexes s for filtering and normalizes its link columns once
// for display.
func NewShared(s *dataset.Snapshot, policy links.Policy, bounds dataset.OptionBounds) *Shared {
	normalized, d := policy.Apply(s)
	sh := &Shared{
		source:  s,
		snap:    normalized,
		links:   d,
		policy:  policy,
		bounds:  bounds,
		engine:  filter.NewEngine(filter.NewIndex(s)),
		options: make(map[string][]string),
	}
	for _, c := range s.Columns() {
		if c.Kind != dataset.KindCategorical {
			continue
		}
		if opts := s.Options(c.Name); bounds.Offers(len(opts)) {
			sh.options[c.Name] = opts
		}
	}
	return sh
}

// Source returns the snapshot as loaded. Filtering and export run on it.
func (sh *Shared) Source() *dataset.Snapshot { return sh.source }

// Links returns the link designation.
func (sh *Shared) Links() links.Designation { return sh.links }

// Policy returns the link policy.
func (sh *Shared) Policy() links.Policy { return sh.policy }

// Offered returns the Exact-set options for column, or nil when the column
// is not offered.
func (sh *Shared) Offered(column string) []string {
	return append([]string(nil), sh.options[column]...)
}
