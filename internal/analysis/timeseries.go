package analysis

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/agridash/internal/chart"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

// Decomposition splits a yearly series into a centered moving-average
// trend and a residual. Yearly data carries no seasonal component.
type Decomposition struct {
	Window   int
	Observed []float64
	Trend    []float64
	Residual []float64
}

// EffectiveWindow clamps w to an odd width no larger than n.
func EffectiveWindow(w, n int) int {
	if w < 1 {
		w = 1
	}
	if w%2 == 0 {
		w--
	}
	if w > n {
		w = n
		if w%2 == 0 {
			w--
		}
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Decompose computes the trend with symmetric windows that shrink at the
// edges, so every year has a trend value and a monotonic series keeps a
// monotonic trend.
func Decompose(y []float64, window int) Decomposition {
	n := len(y)
	d := Decomposition{
		Window:   EffectiveWindow(window, n),
		Observed: append([]float64(nil), y...),
		Trend:    make([]float64, n),
		Residual: make([]float64, n),
	}
	half := d.Window / 2
	for i := 0; i < n; i++ {
		h := min(half, i, n-1-i)
		d.Trend[i] = stat.Mean(y[i-h:i+h+1], nil)
		d.Residual[i] = y[i] - d.Trend[i]
	}
	return d
}

// Forecast extrapolates the least-squares line through (x, y) for horizon
// steps after the last x. It returns nil when fewer than 2 points exist.
func Forecast(x, y []float64, horizon int) (fx, fy []float64, slope float64) {
	if len(y) < 2 || len(x) != len(y) || horizon <= 0 {
		return nil, nil, math.NaN()
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	last := x[len(x)-1]
	for h := 1; h <= horizon; h++ {
		fx = append(fx, last+float64(h))
		fy = append(fy, alpha+beta*(last+float64(h)))
	}
	return fx, fy, beta
}

// AnalyzeTimeSeries decomposes the configured series and projects a linear
// trend forward.
func AnalyzeTimeSeries(ds *dataset.Dataset, opt Options) Result {
	res := Result{Title: TimeSeries.Label(opt.Locale)}
	keys, _ := present(ds, opt.TimeSeriesColumns)
	if len(keys) == 0 {
		res.note(opt.tr("none of the configured series are loaded", "설정된 시계열이 없습니다"))
		return res
	}
	x := ds.YearsFloat()
	years := ds.Years()
	n := len(years)
	if n < 3 {
		res.note(opt.tr("%d year(s) are too few for trend decomposition", "연도가 %d개뿐이라 추세 분해를 할 수 없습니다"), n)
	}
	if n < 2 {
		res.note(opt.tr("forecast skipped: %d year(s) cannot fit a trend line", "예측 생략: 연도가 %d개뿐이라 추세선을 적합할 수 없습니다"), n)
	}
	w := EffectiveWindow(opt.TrendWindow, n)
	if w != opt.TrendWindow {
		res.note(opt.tr("trend window adjusted from %d to %d", "추세 창 크기를 %d에서 %d로 조정했습니다"), opt.TrendWindow, w)
	}

	fc := Table{
		ID:     "forecast",
		Title:  opt.tr("Linear trend forecast", "선형 추세 예측"),
		Corner: opt.tr("Series", "시계열"),
	}
	fc.Columns = append(fc.Columns, opt.tr("Slope/yr", "연간 기울기"))
	if n >= 2 {
		for h := 1; h <= opt.ForecastHorizon; h++ {
			fc.Columns = append(fc.Columns, strconv.Itoa(years[n-1]+h))
		}
	}

	for _, k := range keys {
		title := ds.Title(k, opt.Locale)
		y := ds.Values(k)
		d := Decompose(y, w)
		c := chart.Spec{
			ID:    "series-" + k,
			Title: title,
			Kind:  chart.KindLine,
			X:     yearAxis(opt),
			Y:     chart.Axis{Label: title, Unit: unitOf(ds, k)},
			Series: []chart.Series{
				{Name: opt.tr("Observed", "관측값"), X: x, Y: d.Observed},
				{Name: opt.tr("Trend", "추세") + " (MA" + strconv.Itoa(d.Window) + ")", X: x, Y: d.Trend, Dashed: true},
			},
		}
		fx, fy, slope := Forecast(x, y, opt.ForecastHorizon)
		if len(fx) > 0 {
			// join the forecast to the last observation so the line is continuous
			c.Series = append(c.Series, chart.Series{
				Name:   opt.tr("Forecast", "예측"),
				X:      append([]float64{x[n-1]}, fx...),
				Y:      append([]float64{y[n-1]}, fy...),
				Dashed: true,
			})
			fc.Add(title, append([]float64{slope}, fy...)...)
		}
		res.Charts = append(res.Charts, c, chart.Spec{
			ID:     "residual-" + k,
			Title:  title + opt.tr(" residual", " 잔차"),
			Kind:   chart.KindBar,
			X:      yearAxis(opt),
			Y:      chart.Axis{Label: opt.tr("Residual", "잔차"), Unit: unitOf(ds, k)},
			Series: []chart.Series{{Name: opt.tr("Residual", "잔차"), X: x, Y: d.Residual}},
		})

		t := Table{
			ID:      "decomposition-" + k,
			Title:   title + opt.tr(" decomposition", " 분해"),
			Corner:  opt.tr("Year", "연도"),
			Columns: []string{opt.tr("Observed", "관측값"), opt.tr("Trend", "추세"), opt.tr("Residual", "잔차")},
		}
		for i, yr := range years {
			t.Add(strconv.Itoa(yr), d.Observed[i], d.Trend[i], d.Residual[i])
		}
		res.Tables = append(res.Tables, t)
	}
	if len(fc.Rows) > 0 {
		res.Tables = append(res.Tables, fc)
	}
	res.note(opt.tr("yearly data has no seasonal component; residual = observed - trend", "연 단위 자료라 계절 성분은 없습니다; 잔차 = 관측값 - 추세"))
	return res
}
