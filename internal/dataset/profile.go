package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// OptionBounds decides which columns are offered as Exact-set filters: a
// column is offered only when Min < distinct values < Max.
type OptionBounds struct {
	Min int
	Max int
}

// DefaultOptionBounds offers columns with 2 to 39 distinct values.
func DefaultOptionBounds() OptionBounds { return OptionBounds{Min: 1, Max: 40} }

// Offers reports whether a column with the given distinct count is offered.
func (b OptionBounds) Offers(distinct int) bool {
	return distinct > b.Min && distinct < b.Max
}

// ProfileOptions controls NewProfile.
type ProfileOptions struct {
	Bounds      OptionBounds
	TopValues   int
	LinkColumns []string
}

// ValueCount is one entry of a column's most frequent values.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile summarizes one column.
type ColumnProfile struct {
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	NonNull   int          `json:"non_null"`
	Missing   int          `json:"missing"`
	Distinct  int          `json:"distinct"`
	Offered   bool         `json:"offered_as_filter"`
	Link      bool         `json:"link"`
	TopValues []ValueCount `json:"top_values,omitempty"`
}

// Profile is a markdown-friendly summary of a Snapshot.
type Profile struct {
	Name        string          `json:"name"`
	Rows        int             `json:"rows"`
	Cols        []ColumnProfile `json:"columns"`
	LinkColumns []string        `json:"link_columns,omitempty"`
}

// NewProfile computes per-column statistics for s.
func NewProfile(s *Snapshot, opt ProfileOptions) *Profile {
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	links := make(map[string]bool, len(opt.LinkColumns))
	for _, l := range opt.LinkColumns {
		links[l] = true
	}
	p := &Profile{Name: s.Name(), Rows: s.Len(), LinkColumns: opt.LinkColumns}
	for _, c := range s.cols {
		counts := map[string]int{}
		cp := ColumnProfile{Name: c.Name, Kind: c.Kind.String(), Link: links[c.Name]}
		for _, r := range s.rows {
			v := r[c.Index]
			if IsMissing(v) {
				cp.Missing++
				continue
			}
			cp.NonNull++
			counts[v]++
		}
		cp.Distinct = len(counts)
		cp.Offered = c.Kind == KindCategorical && opt.Bounds.Offers(cp.Distinct)
		if c.Kind == KindCategorical {
			cp.TopValues = topValues(counts, opt.TopValues)
		}
		p.Cols = append(p.Cols, cp)
	}
	return p
}

func topValues(counts map[string]int, n int) []ValueCount {
	tops := make([]ValueCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, ValueCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// Markdown renders the profile as a compact report.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Loaded %d rows × %d columns\n\n", p.Rows, len(p.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, distinct %d)", safeName(c.Name), c.Kind, c.NonNull, missPct, c.Distinct))
		if c.Offered {
			b.WriteString(" [filter options]")
		}
		if c.Link {
			b.WriteString(" [link]")
		}
		if len(c.TopValues) > 0 {
			b.WriteString(" — top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
		}
		b.WriteString("\n")
	}
	if len(p.LinkColumns) > 0 {
		b.WriteString("\n[LINK COLUMNS]\n")
		for _, l := range p.LinkColumns {
			b.WriteString("- ")
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string {
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
	if len(s) > 80 {
		s = s[:77] + "..."
	}
	return s
}
