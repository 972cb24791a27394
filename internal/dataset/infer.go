package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// inferKind decides the kind of column idx from its non-missing cells. A
// column is KindOther when every non-missing value parses as a number or a
// date/time, or when it has no values at all.
func inferKind(rows []Row, idx int) Kind {
	for _, r := range rows {
		v := strings.TrimSpace(r[idx])
		if v == "" {
			continue
		}
		if _, ok := parseNumeric(v); ok {
			continue
		}
		if _, ok := parseTimeMaybe(v); ok {
			continue
		}
		return KindCategorical
	}
	return KindOther
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseNumeric accepts plain, percent, and locale-formatted numbers
// ("1.000,5", "1,000.5", "12,5%"). Thousands separators are only removed
// when a distinct decimal separator is present or the groups are exactly
// three digits long, so "1,2" stays 1.2 and "A-12" is rejected.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case cpos >= 0:
		if isThousandsGrouped(raw, ',') {
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.ReplaceAll(raw, ",", ".")
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isThousandsGrouped(s string, sep byte) bool {
	parts := strings.Split(strings.TrimLeft(s, "+-"), string(sep))
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
