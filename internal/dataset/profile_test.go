package dataset

import (
	"strings"
	"testing"
)

func TestProfileMarkdown(t *testing.T) {
	s, err := New("usv.csv", []string{"Name", "Power", "Length", "Spec Sheet"}, [][]string{
		{"Alpha", "Diesel", "12", "https://example.com/a.pdf"},
		{"Beta", "Solar-Diesel", "7", ""},
		{"Gamma", "Diesel", "9", ""},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := NewProfile(s, ProfileOptions{Bounds: DefaultOptionBounds(), LinkColumns: []string{"Spec Sheet"}})
	if p.Rows != 3 || len(p.Cols) != 4 {
		t.Fatalf("unexpected profile size: %+v", p)
	}
	power := p.Cols[1]
	if !power.Offered || power.Distinct != 2 {
		t.Fatalf("Power should be offered with 2 distinct values: %+v", power)
	}
	if power.TopValues[0].Value != "Diesel" || power.TopValues[0].Count != 2 {
		t.Fatalf("top value = %+v", power.TopValues[0])
	}
	if p.Cols[2].Offered || p.Cols[2].Kind != "other" {
		t.Fatalf("numeric column must not be offered: %+v", p.Cols[2])
	}
	if p.Cols[3].Offered {
		t.Fatalf("single-valued column must not be offered: %+v", p.Cols[3])
	}

	md := p.Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: usv.csv",
		"Loaded 3 rows × 4 columns",
		"- Power: categorical (non-null 3, missing 0.0%, distinct 2) [filter options] — top: Diesel(2), Solar-Diesel(1)",
		"- Spec Sheet: categorical (non-null 1, missing 66.7%, distinct 1) [link]",
		"[LINK COLUMNS]\n- Spec Sheet",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestOptionBounds(t *testing.T) {
	b := DefaultOptionBounds()
	for d, want := range map[int]bool{0: false, 1: false, 2: true, 39: true, 40: false, 100: false} {
		if got := b.Offers(d); got != want {
			t.Errorf("Offers(%d) = %v, want %v", d, got, want)
		}
	}
}
