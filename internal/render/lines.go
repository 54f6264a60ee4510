package render

import (
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/KaramelBytes/agridash/internal/chart"
)

func provider(f Format) gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// valueRange pads [min,max] so flat series still get a drawable axis.
func valueRange(vals []float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	pad := (hi - lo) * 0.08
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func yearTicks(xs []float64) []gochart.Tick {
	seen := map[float64]bool{}
	var ticks []gochart.Tick
	for _, x := range xs {
		if !seen[x] && x == math.Trunc(x) {
			seen[x] = true
			ticks = append(ticks, gochart.Tick{Value: x, Label: fmt.Sprintf("%.0f", x)})
		}
	}
	return ticks
}

func lineChart(w io.Writer, spec chart.Spec, f Format, opt Options) error {
	var series []gochart.Series
	var allX, primary, secondary []float64
	for i, s := range spec.Series {
		xs, ys := s.Finite()
		if len(xs) < 2 {
			continue
		}
		st := gochart.Style{
			StrokeColor: gochart.GetDefaultColor(i),
			StrokeWidth: 2,
			DotColor:    gochart.GetDefaultColor(i),
			DotWidth:    3,
		}
		if s.Dashed {
			st.StrokeDashArray = []float64{6, 4}
			st.DotWidth = 0
		}
		cs := gochart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: st}
		if s.Secondary {
			cs.YAxis = gochart.YAxisSecondary
			secondary = append(secondary, ys...)
		} else {
			primary = append(primary, ys...)
		}
		allX = append(allX, xs...)
		series = append(series, cs)
	}
	if len(series) == 0 || len(primary) == 0 {
		return fmt.Errorf("chart %s: %w", spec.ID, ErrEmptyChart)
	}
	graph := gochart.Chart{
		Title:      spec.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: spec.X.Title(), Ticks: yearTicks(allX)},
		YAxis:      gochart.YAxis{Name: spec.Y.Title(), Range: valueRange(primary)},
		Series:     series,
	}
	if spec.Y2 != nil && len(secondary) > 0 {
		graph.YAxisSecondary = gochart.YAxis{Name: spec.Y2.Title(), Range: valueRange(secondary)}
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	if err := graph.Render(provider(f), w); err != nil {
		return fmt.Errorf("render chart %s: %w", spec.ID, err)
	}
	return nil
}

func barChart(w io.Writer, spec chart.Spec, f Format, opt Options) error {
	xs, ys := spec.Series[0].Finite()
	if len(xs) == 0 {
		return fmt.Errorf("chart %s: %w", spec.ID, ErrEmptyChart)
	}
	bars := make([]gochart.Value, len(xs))
	for i := range xs {
		bars[i] = gochart.Value{
			Label: fmt.Sprintf("%.0f", xs[i]),
			Value: ys[i],
			Style: gochart.Style{FillColor: gochart.GetDefaultColor(0), StrokeColor: gochart.GetDefaultColor(0)},
		}
	}
	// the base line is drawn at zero so negative residuals hang below it
	rng := valueRange(append([]float64{0}, ys...))
	graph := gochart.BarChart{
		Title:        spec.Title,
		Width:        opt.Width,
		Height:       opt.Height,
		Background:   gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:     max(opt.Width/(2*len(bars)+2), 8),
		BarSpacing:   max(opt.Width/(4*len(bars)+4), 4),
		UseBaseValue: true,
		BaseValue:    0,
		YAxis:        gochart.YAxis{Name: spec.Y.Title(), Range: rng},
		Bars:         bars,
	}
	if err := graph.Render(provider(f), w); err != nil {
		return fmt.Errorf("render chart %s: %w", spec.ID, err)
	}
	return nil
}
