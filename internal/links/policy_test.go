package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
)

func snapshot(t *testing.T, header []string, records [][]string) *dataset.Snapshot {
	t.Helper()
	s, err := dataset.New("t", header, records)
	require.NoError(t, err)
	return s
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/a.pdf",
		"  http://example.com ",
		"ftp://example.com",
		"n/a",
		"",
		"https://",
		"HTTPS://EXAMPLE.COM",
		"\x00\xff",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		if once != "" {
			assert.True(t, IsValid(once))
		}
	}
	assert.Equal(t, "http://example.com", Normalize("  http://example.com "))
	assert.Equal(t, "", Normalize("n/a"))
	assert.Equal(t, "", Normalize("https://"))
	assert.Equal(t, "", Normalize("HTTPS://EXAMPLE.COM"))
}

func TestDetectByNameFirst(t *testing.T) {
	s := snapshot(t, []string{"Name", "Spec Sheet", "Website"}, [][]string{
		{"Alpha", "not a link", "https://alpha.example"},
	})
	d := NewPolicy(nil, "").Detect(s)
	assert.Equal(t, ByName, d.Strategy)
	assert.Equal(t, []string{"Spec Sheet"}, d.Columns)
	assert.True(t, d.Has("Spec Sheet"))
	assert.False(t, d.Has("Website"))
}

func TestDetectByContent(t *testing.T) {
	s := snapshot(t, []string{"Name", "Brochure", "Website", "Notes"}, [][]string{
		{"Alpha", "", "see site", "ftp://x"},
		{"Beta", "http://b.example/spec", "https://beta.example", ""},
	})
	d := NewPolicy(nil, "").Detect(s)
	assert.Equal(t, ByContent, d.Strategy)
	assert.Equal(t, []string{"Brochure", "Website"}, d.Columns)
}

func TestDetectNone(t *testing.T) {
	s := snapshot(t, []string{"Name"}, [][]string{{"Alpha"}})
	d := NewPolicy(nil, "").Detect(s)
	assert.Equal(t, None, d.Strategy)
	assert.Empty(t, d.Columns)
}

func TestApplyNormalizesOnce(t *testing.T) {
	s := snapshot(t, []string{"Name", "Spec Sheet"}, [][]string{
		{"Alpha", " https://a.example/spec.pdf "},
		{"Beta", "TBD"},
	})
	p := NewPolicy([]string{"Spec Sheet"}, "Spec")
	out, d := p.Apply(s)
	assert.Equal(t, []string{"Spec Sheet"}, d.Columns)
	assert.Equal(t, "https://a.example/spec.pdf", out.Cell(0, 1))
	assert.Equal(t, "", out.Cell(1, 1))
	assert.Equal(t, "TBD", s.Cell(1, 1), "source snapshot untouched")

	again, _ := p.Apply(out)
	assert.Equal(t, out.Cell(0, 1), again.Cell(0, 1))
	assert.Equal(t, "Spec", p.Render(out.Cell(0, 1)))
	assert.Equal(t, "", p.Render(out.Cell(1, 1)))
}

func TestNewPolicyDefaults(t *testing.T) {
	p := NewPolicy(nil, " ")
	assert.Equal(t, DefaultNames, p.Names)
	assert.Equal(t, DefaultLabel, p.Label)
	assert.Equal(t, DefaultLabel, Policy{}.Render("https://x.example"))
}
