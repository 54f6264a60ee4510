package analysis

import (
	"github.com/KaramelBytes/agridash/internal/chart"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

// trendTable summarizes how each indicator moved over the period.
func trendTable(id, title string, ds *dataset.Dataset, keys []string, opt Options) Table {
	t := Table{
		ID:     id,
		Title:  title,
		Corner: opt.tr("Indicator", "지표"),
		Columns: []string{
			opt.tr("First", "시작값"), opt.tr("Last", "최종값"), opt.tr("Mean", "평균"),
			opt.tr("Min", "최소"), opt.tr("Max", "최대"), opt.tr("Slope/yr", "연간 기울기"), opt.tr("Change %", "변화율 %"),
		},
	}
	x := ds.YearsFloat()
	for _, k := range keys {
		s := Describe(x, ds.Values(k))
		t.Add(titleUnit(ds, k, opt.Locale), s.First, s.Last, s.Mean, s.Min, s.Max, s.Slope, s.ChangePct)
	}
	return t
}

// trendNote describes the direction of a series in one sentence.
func trendNote(ds *dataset.Dataset, key string, opt Options) string {
	s := Describe(ds.YearsFloat(), ds.Values(key))
	dir := opt.tr("flat", "변화 없음")
	switch {
	case s.Slope > 0:
		dir = opt.tr("increasing", "증가")
	case s.Slope < 0:
		dir = opt.tr("decreasing", "감소")
	}
	return ds.Title(key, opt.Locale) + ": " + dir + " (" + FormatValue(s.Slope) + " " + unitOf(ds, key) + opt.tr("/yr", "/년") + ", " +
		FormatValue(s.ChangePct) + "%)"
}

func yearAxis(opt Options) chart.Axis { return chart.Axis{Label: opt.tr("Year", "연도")} }

// seriesOf builds a chart series for a dataset column.
func seriesOf(ds *dataset.Dataset, key string, opt Options) chart.Series {
	return chart.Series{Name: ds.Title(key, opt.Locale), X: ds.YearsFloat(), Y: ds.Values(key)}
}

// fittedTrend returns the least-squares line of a column as a dashed series.
func fittedTrend(ds *dataset.Dataset, key string, opt Options) chart.Series {
	x := ds.YearsFloat()
	s := Describe(x, ds.Values(key))
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = s.Intercept + s.Slope*v
	}
	return chart.Series{Name: ds.Title(key, opt.Locale) + opt.tr(" trend", " 추세"), X: x, Y: y, Dashed: true}
}

// dualAxisChart plots primary keys on the left axis and secondary keys on
// the right. It returns false when no primary key is present.
func dualAxisChart(id, title string, ds *dataset.Dataset, primary, secondary []string, withTrend bool, opt Options) (chart.Spec, bool) {
	primary, _ = present(ds, primary)
	secondary, _ = present(ds, secondary)
	if len(primary) == 0 {
		return chart.Spec{}, false
	}
	c := chart.Spec{
		ID:    id,
		Title: title,
		Kind:  chart.KindLine,
		X:     yearAxis(opt),
		Y:     chart.Axis{Label: ds.Title(primary[0], opt.Locale), Unit: unitOf(ds, primary[0])},
	}
	if len(primary) > 1 {
		c.Y.Label = opt.tr("Value", "값")
	}
	for _, k := range primary {
		c.Series = append(c.Series, seriesOf(ds, k, opt))
		if withTrend {
			c.Series = append(c.Series, fittedTrend(ds, k, opt))
		}
	}
	if len(secondary) > 0 {
		c.Y2 = &chart.Axis{Label: ds.Title(secondary[0], opt.Locale), Unit: unitOf(ds, secondary[0])}
		for _, k := range secondary {
			s := seriesOf(ds, k, opt)
			s.Secondary = true
			c.Series = append(c.Series, s)
		}
	}
	return c, true
}
