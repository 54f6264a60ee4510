package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var missingTokens = map[string]bool{
	"": true, "nan": true, "na": true, "n/a": true, "-": true, "null": true, "<nil>": true,
}

func isMissingToken(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

// parseNumeric parses a cell, auto-detecting decimal and thousands separators.
func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if isMissingToken(raw) {
		return math.NaN(), false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)

	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			dec = ','
		}
	case cpos >= 0:
		// "31,200" is a thousands group; "13,9" is a decimal comma.
		if !thousandsGroups.MatchString(raw) {
			dec = ','
		}
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN(), false
	}
	return f, true
}

// parseYear accepts "2016", "2016.0" and "2016년".
func parseYear(s string) (int, bool) {
	raw := strings.TrimSuffix(strings.TrimSpace(s), "년")
	if y, err := strconv.Atoi(raw); err == nil {
		return y, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

var thousandsGroups = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+$`)

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Rice (t)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Area [ha]
	{regexp.MustCompile(`^(.*?)[_\s-]+(°[CF]|mm|ppm|ppb|%)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
