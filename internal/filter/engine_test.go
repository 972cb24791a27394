package filter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/sheetsift-cli/internal/dataset"
)

func fleet(t *testing.T) *dataset.Snapshot {
	t.Helper()
	s, err := dataset.New("usv.csv", []string{"Name", "Power", "Sensor", "Length"}, [][]string{
		{"Alpha", "Diesel", "Multibeam MBES-300", "12"},
		{"Beta", "Solar-Diesel", "Sidescan", "7.5"},
		{"Gamma", "Electric", "", "9"},
		{"Delta", "Diesel-Hybrid", "multibeam mbes-100", "11"},
	})
	require.NoError(t, err)
	return s
}

func names(s *dataset.Snapshot, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = s.Cell(r, 0)
	}
	return out
}

func TestEvaluateIdentity(t *testing.T) {
	s := fleet(t)
	res := Evaluate(s, NewStore().Current())
	assert.Equal(t, []int{0, 1, 2, 3}, res.Rows)
	assert.Empty(t, res.Warnings)
}

func TestKeywordIsCaseInsensitiveSubstring(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Sensor", NewKeyword("mbes"))
	res := Evaluate(s, st.Current())
	assert.Equal(t, []string{"Alpha", "Delta"}, names(s, res.Rows))

	st.SetCriterion("Sensor", NewKeyword("MULTIBEAM mbes-3"))
	res = Evaluate(s, st.Current())
	assert.Equal(t, []string{"Alpha"}, names(s, res.Rows))
}

func TestKeywordUnicodeFolding(t *testing.T) {
	s, err := dataset.New("t", []string{"Name", "Port"}, [][]string{
		{"A", "Straße"},
		{"B", "STRASSE"},
		{"C", "Kiel"},
	})
	require.NoError(t, err)
	st := NewStore()
	st.SetCriterion("Port", NewKeyword("strasse"))
	res := Evaluate(s, st.Current())
	assert.Equal(t, []string{"A", "B"}, names(s, res.Rows))
}

func TestExactSetNeverMatchesSubstring(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Power", NewExactSet("Diesel"))
	res := Evaluate(s, st.Current())
	assert.Equal(t, []string{"Alpha"}, names(s, res.Rows))

	st.SetCriterion("Power", NewExactSet("Diesel", "Electric"))
	res = Evaluate(s, st.Current())
	assert.Equal(t, []string{"Alpha", "Gamma"}, names(s, res.Rows))
}

func TestExactSetMissingMarker(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Sensor", NewExactSet("Sidescan"))
	assert.Equal(t, []string{"Beta"}, names(s, Evaluate(s, st.Current()).Rows))

	st.SetCriterion("Sensor", NewExactSet("Sidescan", ""))
	assert.Equal(t, []string{"Beta", "Gamma"}, names(s, Evaluate(s, st.Current()).Rows))
}

func TestKeywordSetIsOr(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Power", NewKeywordSet("solar", "diesel"))
	res := Evaluate(s, st.Current())
	assert.Equal(t, []string{"Alpha", "Beta", "Delta"}, names(s, res.Rows))
}

func TestMissingCellsNeverMatchKeywords(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Sensor", NewKeywordSet("a", "e", "i", "o", "u", "s"))
	res := Evaluate(s, st.Current())
	assert.NotContains(t, names(s, res.Rows), "Gamma")
}

func TestBlankInputFiltersNothing(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Power", NewKeyword("   "))
	st.SetCriterion("Sensor", NewKeywordSet("", " "))
	st.SetCriterion("Name", NewExactSet())
	st.SetGlobalKeyword("  ")
	res := Evaluate(s, st.Current())
	assert.Equal(t, []int{0, 1, 2, 3}, res.Rows)
	assert.Empty(t, res.Warnings)
}

func TestNeedlesMatchAsTyped(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Power", NewKeyword("diesel "))
	res := Evaluate(s, st.Current())
	assert.Empty(t, res.Rows, "trailing space is part of the needle")

	st.SetCriterion("Power", NewKeywordSet(" ", "solar-"))
	res = Evaluate(s, st.Current())
	assert.Equal(t, []string{"Beta"}, names(s, res.Rows), "blank members are dropped")

	st.ClearCriterion("Power")
	st.SetGlobalKeyword("mbes ")
	res = Evaluate(s, st.Current())
	assert.Empty(t, res.Rows)

	st.SetGlobalKeyword("beam mbes")
	res = Evaluate(s, st.Current())
	assert.Equal(t, []string{"Alpha", "Delta"}, names(s, res.Rows))
}

func TestAndAcrossColumnsIsIntersection(t *testing.T) {
	header := []string{"A", "B"}
	var records [][]string
	for i := 0; i < 10; i++ {
		a, b := "no", "no"
		if i%2 == 0 {
			a = "yes"
		}
		if i == 2 || i == 4 || i == 5 {
			b = "yes"
		}
		records = append(records, []string{a, b})
	}
	s, err := dataset.New("t", header, records)
	require.NoError(t, err)

	st := NewStore()
	st.SetCriterion("A", NewExactSet("yes"))
	first := Evaluate(s, st.Current())
	require.Len(t, first.Rows, 5)

	st.SetCriterion("B", NewExactSet("yes"))
	second := Evaluate(s, st.Current())
	assert.Equal(t, []int{2, 4}, second.Rows)
	for _, r := range second.Rows {
		assert.Contains(t, first.Rows, r)
	}
}

func TestRowOrderPreserved(t *testing.T) {
	var records [][]string
	for i := 0; i < 200; i++ {
		records = append(records, []string{fmt.Sprintf("row-%03d", i), []string{"x", "y", "z"}[i%3]})
	}
	s, err := dataset.New("t", []string{"Name", "Group"}, records)
	require.NoError(t, err)

	combos := []State{
		{Criteria: map[string]Criterion{"Group": NewExactSet("z", "x")}},
		{Criteria: map[string]Criterion{"Group": NewKeywordSet("y", "z"), "Name": NewKeyword("row-1")}},
		{Criteria: map[string]Criterion{}, Global: "row-0"},
	}
	for _, st := range combos {
		res := Evaluate(s, st)
		require.NotEmpty(t, res.Rows)
		for i := 1; i < len(res.Rows); i++ {
			assert.Less(t, res.Rows[i-1], res.Rows[i])
		}
	}
}

func TestGlobalKeywordScenario(t *testing.T) {
	s, err := dataset.New("t", []string{"Name", "Power"}, [][]string{
		{"Alpha", "Diesel"},
		{"Beta", "Solar-Diesel"},
		{"Gamma", "Electric"},
	})
	require.NoError(t, err)

	st := NewStore()
	st.SetGlobalKeyword("diesel")
	assert.Equal(t, []string{"Alpha", "Beta"}, names(s, Evaluate(s, st.Current()).Rows))

	st.SetCriterion("Power", NewExactSet("Diesel"))
	assert.Equal(t, []string{"Alpha"}, names(s, Evaluate(s, st.Current()).Rows))
}

func TestGlobalKeywordSkipsOtherColumns(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetGlobalKeyword("12")
	res := Evaluate(s, st.Current())
	assert.Empty(t, res.Rows, "numeric columns are not searched by the global keyword")
}

func TestUnknownColumnWarns(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Hull", NewKeyword("steel"))
	st.SetCriterion("Power", NewExactSet("Electric"))
	res := Evaluate(s, st.Current())
	assert.Equal(t, []string{"Gamma"}, names(s, res.Rows))
	require.Len(t, res.Warnings, 1)

	var ce *ConfigurationError
	require.True(t, errors.As(res.Warnings[0], &ce))
	assert.Equal(t, "Hull", ce.Column)
	assert.ErrorIs(t, res.Warnings[0], ErrUnknownColumn)
}

func TestKindMismatchTreatedAsAbsent(t *testing.T) {
	s := fleet(t)
	st := NewStore()
	st.SetCriterion("Length", NewExactSet("12"))
	st.SetCriterion("Name", Criterion{Kind: CriterionKind(42), Values: []string{"x"}})
	res := Evaluate(s, st.Current())
	assert.Equal(t, []int{0, 1, 2, 3}, res.Rows)
	require.Len(t, res.Warnings, 2)

	var ee *EvaluationError
	require.True(t, errors.As(res.Warnings[0], &ee))
	assert.Equal(t, "Length", ee.Column)
	assert.ErrorIs(t, res.Warnings[0], ErrKindMismatch)
	assert.ErrorIs(t, res.Warnings[1], ErrUnsupportedCriterion)
}

func TestEngineSharedIndex(t *testing.T) {
	s := fleet(t)
	ix := NewIndex(s)
	a, b := NewEngine(ix), NewEngine(ix)

	sa := NewStore()
	sa.SetCriterion("Power", NewExactSet("Electric"))
	sb := NewStore()
	sb.SetGlobalKeyword("beta")

	assert.Equal(t, []string{"Gamma"}, names(s, a.Evaluate(sa.Current()).Rows))
	assert.Equal(t, []string{"Beta"}, names(s, b.Evaluate(sb.Current()).Rows))
	assert.Equal(t, []int{0, 1, 2, 3}, a.Evaluate(NewStore().Current()).Rows)
}

func TestIndexCount(t *testing.T) {
	ix := NewIndex(fleet(t))
	assert.Equal(t, 1, ix.Count("Power", "Diesel"))
	assert.Equal(t, 1, ix.Count("Sensor", ""))
	assert.Equal(t, 0, ix.Count("Length", "12"))
	assert.Equal(t, []string{"Name", "Power", "Sensor"}, ix.Categorical())
	assert.Equal(t, 4, ix.Len())
}

func TestEmptySnapshot(t *testing.T) {
	s, err := dataset.New("t", []string{"Name"}, nil)
	require.NoError(t, err)
	st := NewStore()
	st.SetGlobalKeyword("x")
	assert.Empty(t, Evaluate(s, st.Current()).Rows)
	assert.Empty(t, Evaluate(s, State{}).Rows)
}
