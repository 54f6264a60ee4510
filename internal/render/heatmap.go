package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/agridash/internal/chart"
)

// gridXYZ adapts a chart grid to plotter.GridXYZ. Rows are drawn top-down.
type gridXYZ struct{ g *chart.Grid }

func (g gridXYZ) Dims() (c, r int) { return len(g.g.Cols), len(g.g.Rows) }
func (g gridXYZ) X(c int) float64  { return float64(c) }
func (g gridXYZ) Y(r int) float64  { return float64(r) }
func (g gridXYZ) Z(c, r int) float64 {
	v := g.g.Z[len(g.g.Rows)-1-r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// diverging runs blue through white to red.
type diverging int

func (d diverging) Colors() []color.Color {
	n := int(d)
	out := make([]color.Color, n)
	for i := range out {
		t := float64(i)/float64(n-1)*2 - 1
		switch {
		case t < 0:
			k := uint8(255 * (1 + t))
			out[i] = color.RGBA{R: k, G: k, B: 255, A: 255}
		default:
			k := uint8(255 * (1 - t))
			out[i] = color.RGBA{R: 255, G: k, B: k, A: 255}
		}
	}
	return out
}

func heatmap(w io.Writer, spec chart.Spec, f Format, opt Options) error {
	g := spec.Grid
	if len(g.Rows) == 0 || len(g.Cols) == 0 {
		return fmt.Errorf("chart %s: %w", spec.ID, ErrEmptyChart)
	}
	p := plot.New()
	p.Title.Text = spec.Title
	hm := plotter.NewHeatMap(gridXYZ{g}, diverging(64))
	hm.Min, hm.Max = g.Min, g.Max
	if hm.Min >= hm.Max {
		hm.Min, hm.Max = -1, 1
	}
	p.Add(hm)

	labels := plotter.XYLabels{}
	for r := range g.Rows {
		for c := range g.Cols {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(len(g.Rows) - 1 - r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", g.Z[r][c]))
		}
	}
	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return fmt.Errorf("chart %s labels: %w", spec.ID, err)
	}
	for i := range lbl.TextStyle {
		lbl.TextStyle[i].XAlign = -0.5
		lbl.TextStyle[i].YAlign = -0.5
	}
	p.Add(lbl)

	rows := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		rows[len(g.Rows)-1-i] = r
	}
	p.NominalX(g.Cols...)
	p.NominalY(rows...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = -1

	// plot sizes are in points; images are 96 dpi
	wt, err := p.WriterTo(vg.Points(float64(opt.Width)*0.75), vg.Points(float64(opt.Width)*0.75), string(f))
	if err != nil {
		return fmt.Errorf("render chart %s: %w", spec.ID, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart %s: %w", spec.ID, err)
	}
	return nil
}
