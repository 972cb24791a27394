package dataset

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewNormalizesHeaderAndRows(t *testing.T) {
	header := []string{"  Name ", "Power", "", "Power", "\ufeffLength (m)"}
	records := [][]string{
		{"Alpha", "Diesel", "x", "a", "12.5"},
		{"", "  ", "", "", ""},
		{"Beta", "Solar-Diesel"},
		{"Gamma", "Electric", "", "", "9", "overflow"},
	}
	s, err := New("usv.csv", header, records)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"Name", "Power", "Unnamed: 2", "Power.1", "Length (m)"}
	if got := s.Header(); !reflect.DeepEqual(got, want) {
		t.Fatalf("header = %q, want %q", got, want)
	}
	if s.Len() != 3 {
		t.Fatalf("expected empty row dropped, got %d rows", s.Len())
	}
	if got := s.Row(1); len(got) != 5 || got[0] != "Beta" || got[4] != "" {
		t.Fatalf("short row not padded: %q", got)
	}
	if got := s.Row(2); len(got) != 5 {
		t.Fatalf("long row not truncated: %q", got)
	}
	if s.Caption() != "Loaded 3 rows × 5 columns" {
		t.Fatalf("caption = %q", s.Caption())
	}
}

func TestNewDedupesRepeatedSuffixes(t *testing.T) {
	s, err := New("t", []string{"A", "A", "A.1", "A"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []string{"A", "A.1", "A.1.1", "A.2"}
	if got := s.Header(); !reflect.DeepEqual(got, want) {
		t.Fatalf("header = %q, want %q", got, want)
	}
}

func TestNewRejectsEmptyHeader(t *testing.T) {
	if _, err := New("t", nil, nil); !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestKindInference(t *testing.T) {
	header := []string{"Name", "Length", "Launched", "Share", "Blank", "Mixed"}
	records := [][]string{
		{"Alpha", "12.5", "2021-03-04", "12,5%", "", "10"},
		{"Beta", "1,200.0", "2022/01/09", "7%", "", "n/a"},
		{"Gamma", "", "", "", "", ""},
	}
	s, err := New("t", header, records)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := map[string]Kind{
		"Name":     KindCategorical,
		"Length":   KindOther,
		"Launched": KindOther,
		"Share":    KindOther,
		"Blank":    KindOther,
		"Mixed":    KindCategorical,
	}
	for name, k := range want {
		c, ok := s.Column(name)
		if !ok {
			t.Fatalf("column %s missing", name)
		}
		if c.Kind != k {
			t.Errorf("%s kind = %s, want %s", name, c.Kind, k)
		}
	}
}

func TestOptionsFirstSeenOrderWithoutMissing(t *testing.T) {
	s, err := New("t", []string{"Power"}, [][]string{{"Solar"}, {"Diesel"}, {""}, {"Solar"}, {"Electric"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := s.Options("Power")
	want := []string{"Solar", "Diesel", "Electric"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("options = %q, want %q", got, want)
	}
	if s.Options("Nope") != nil {
		t.Fatalf("unknown column should have no options")
	}
}

func TestMapColumnLeavesReceiverUntouched(t *testing.T) {
	s, err := New("t", []string{"Name", "Link"}, [][]string{{"Alpha", "ftp://x"}, {"Beta", "https://b"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m := s.MapColumn("Link", func(string) string { return "" })
	if m.Cell(0, 1) != "" || m.Cell(1, 1) != "" {
		t.Fatalf("mapped column not rewritten: %q %q", m.Cell(0, 1), m.Cell(1, 1))
	}
	if s.Cell(0, 1) != "ftp://x" {
		t.Fatalf("receiver mutated: %q", s.Cell(0, 1))
	}
	if m.Cell(0, 0) != "Alpha" {
		t.Fatalf("other columns changed: %q", m.Cell(0, 0))
	}
	if s.MapColumn("Nope", func(string) string { return "" }) != s {
		t.Fatalf("unknown column should return receiver")
	}
}

func TestRowReturnsCopy(t *testing.T) {
	s, err := New("t", []string{"Name"}, [][]string{{"Alpha"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := s.Row(0)
	r[0] = "changed"
	if s.Cell(0, 0) != "Alpha" {
		t.Fatalf("Row leaked internal storage")
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"1,200.5", 1200.5, true},
		{"1.200,5", 1200.5, true},
		{"1,200", 1200, true},
		{"0,5", 0.5, true},
		{"12%", 12, true},
		{"MBES-300", 0, false},
		{"NaN", 0, false},
		{"Infinity", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseNumeric(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseNumeric(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
