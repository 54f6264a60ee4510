package chart

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValidate(t *testing.T) {
	ok := Spec{ID: "a", Kind: KindLine, Series: []Series{{Name: "s", X: []float64{1, 2}, Y: []float64{3, 4}}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	bad := []Spec{
		{Kind: KindLine},
		{ID: "b", Kind: KindLine},
		{ID: "c", Kind: KindLine, Series: []Series{{X: []float64{1}, Y: nil}}},
		{ID: "d", Kind: KindLine, Series: []Series{{X: []float64{1}, Y: []float64{1}, Secondary: true}}},
		{ID: "e", Kind: KindHeatmap},
		{ID: "f", Kind: KindHeatmap, Grid: &Grid{Rows: []string{"a"}, Cols: []string{"a", "b"}, Z: [][]float64{{1}}}},
		{ID: "g", Kind: "pie"},
	}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Fatalf("expected error for %+v", s)
		}
	}
}

func TestSeriesFinite(t *testing.T) {
	s := Series{X: []float64{1, 2, 3, 4}, Y: []float64{1, math.NaN(), 3, math.Inf(1)}}
	xs, ys := s.Finite()
	if len(xs) != 2 || xs[1] != 3 || ys[1] != 3 {
		t.Fatalf("Finite = %v %v", xs, ys)
	}
}

func TestAxisTitle(t *testing.T) {
	if got := (Axis{Label: "Temp", Unit: "°C"}).Title(); got != "Temp (°C)" {
		t.Fatalf("Title = %q", got)
	}
	if got := (Axis{Label: "Year"}).Title(); got != "Year" {
		t.Fatalf("Title = %q", got)
	}
}

func TestSeriesJSONNullsNaN(t *testing.T) {
	b, err := json.Marshal(Series{Name: "s", X: []float64{1, 2}, Y: []float64{3, math.NaN()}, Dashed: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"s","dashed":true,"x":[1,2],"y":[3,null]}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}
