package analysis

import (
	"fmt"
	"strings"
)

// Selection enumerates the dashboard menu options.
type Selection int

const (
	Overview Selection = iota
	Climate
	AgricultureStructure
	CorrelationRegression
	TimeSeries
	MLModels

	numSelections
)

var selectionInfo = [numSelections]struct {
	slug string
	en   string
	ko   string
}{
	Overview:              {"overview", "Data Overview", "데이터 개요"},
	Climate:               {"climate", "Climate Analysis", "기후 변화 분석"},
	AgricultureStructure:  {"agriculture-structure", "Agriculture Structure Analysis", "농업 구조 변화 분석"},
	CorrelationRegression: {"correlation-regression", "Correlation & Regression", "상관관계 및 회귀분석"},
	TimeSeries:            {"time-series", "Time Series Analysis", "시계열 분석"},
	MLModels:              {"ml-models", "Machine Learning Models", "머신러닝 모델"},
}

// Selections returns every menu option in display order.
func Selections() []Selection {
	out := make([]Selection, 0, numSelections)
	for s := Selection(0); s < numSelections; s++ {
		out = append(out, s)
	}
	return out
}

// Valid reports whether s is a known selection.
func (s Selection) Valid() bool { return s >= 0 && s < numSelections }

// Slug returns the URL/CLI identifier.
func (s Selection) Slug() string {
	if !s.Valid() {
		return fmt.Sprintf("selection(%d)", int(s))
	}
	return selectionInfo[s].slug
}

func (s Selection) String() string { return s.Slug() }

// Label returns the menu wording for the locale ("ko" or English otherwise).
func (s Selection) Label(locale string) string {
	if !s.Valid() {
		return s.Slug()
	}
	if locale == "ko" {
		return selectionInfo[s].ko
	}
	return selectionInfo[s].en
}

// ParseSelection maps a slug (case-insensitive, '_' accepted for '-') to a selection.
func ParseSelection(slug string) (Selection, error) {
	k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(slug)), "_", "-")
	for s := Selection(0); s < numSelections; s++ {
		if selectionInfo[s].slug == k {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSelection, slug)
}

func (s Selection) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSelection, int(s))
	}
	return []byte(s.Slug()), nil
}

func (s *Selection) UnmarshalText(b []byte) error {
	v, err := ParseSelection(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
