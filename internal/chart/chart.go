// Package chart defines renderer-independent chart specifications. Analyzers
// return these values; the render package turns them into images.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind selects the chart family.
type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindHeatmap Kind = "heatmap"
)

// Axis describes one axis.
type Axis struct {
	Label string `json:"label"`
	Unit  string `json:"unit,omitempty"`
}

// Title returns "Label (Unit)" or just the label.
func (a Axis) Title() string {
	if a.Unit == "" {
		return a.Label
	}
	return fmt.Sprintf("%s (%s)", a.Label, a.Unit)
}

// Series is one named sequence of points.
type Series struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
	// Secondary plots the series against the right-hand axis.
	Secondary bool `json:"secondary,omitempty"`
	// Dashed marks derived series such as trends and forecasts.
	Dashed bool `json:"dashed,omitempty"`
}

// Grid is a labelled matrix for heatmaps. Z[row][col].
type Grid struct {
	Rows []string    `json:"rows"`
	Cols []string    `json:"cols"`
	Z    [][]float64 `json:"z"`
	Min  float64     `json:"min"`
	Max  float64     `json:"max"`
}

// Spec is a complete chart definition.
type Spec struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Kind   Kind     `json:"kind"`
	X      Axis     `json:"x_axis"`
	Y      Axis     `json:"y_axis"`
	Y2     *Axis    `json:"y2_axis,omitempty"`
	Series []Series `json:"series,omitempty"`
	Grid   *Grid    `json:"grid,omitempty"`
}

// Validate checks the structural invariants a renderer relies on.
func (s Spec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("chart without id")
	}
	switch s.Kind {
	case KindLine, KindBar:
		if len(s.Series) == 0 {
			return fmt.Errorf("chart %s: no series", s.ID)
		}
		for _, sr := range s.Series {
			if len(sr.X) != len(sr.Y) {
				return fmt.Errorf("chart %s: series %q has %d x and %d y values", s.ID, sr.Name, len(sr.X), len(sr.Y))
			}
			if sr.Secondary && s.Y2 == nil {
				return fmt.Errorf("chart %s: series %q on missing secondary axis", s.ID, sr.Name)
			}
		}
	case KindHeatmap:
		if s.Grid == nil || len(s.Grid.Z) != len(s.Grid.Rows) {
			return fmt.Errorf("chart %s: malformed grid", s.ID)
		}
		for _, row := range s.Grid.Z {
			if len(row) != len(s.Grid.Cols) {
				return fmt.Errorf("chart %s: malformed grid row", s.ID)
			}
		}
	default:
		return fmt.Errorf("chart %s: unknown kind %q", s.ID, s.Kind)
	}
	return nil
}

// Finite returns the points of a series whose x and y are both finite.
func (s Series) Finite() (xs, ys []float64) {
	for i := range s.X {
		if i >= len(s.Y) {
			break
		}
		x, y := s.X[i], s.Y[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// MarshalJSON encodes non-finite points as null.
func (s Series) MarshalJSON() ([]byte, error) {
	type plain Series
	return json.Marshal(struct {
		plain
		X []*float64 `json:"x"`
		Y []*float64 `json:"y"`
	}{plain(s), nullable(s.X), nullable(s.Y)})
}

func nullable(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
			continue
		}
		out[i] = &vals[i]
	}
	return out
}
