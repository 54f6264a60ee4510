package analysis

import (
	"strings"

	"github.com/KaramelBytes/agridash/internal/chart"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

// AnalyzeClimate reports temperature, precipitation and air-quality trends.
func AnalyzeClimate(ds *dataset.Dataset, opt Options) Result {
	res := Result{Title: Climate.Label(opt.Locale)}
	wanted := []string{dataset.AvgTemperature, dataset.Precipitation, dataset.PM10, dataset.PM25, dataset.O3}
	_, missing := present(ds, wanted)
	if len(missing) > 0 {
		res.note(opt.tr("missing indicators: %s", "누락된 지표: %s"), strings.Join(missing, ", "))
	}

	if c, ok := dualAxisChart("temperature-precipitation", opt.tr("Mean temperature and precipitation", "연평균 기온과 강수량"),
		ds, []string{dataset.AvgTemperature}, []string{dataset.Precipitation}, true, opt); ok {
		res.Charts = append(res.Charts, c)
	}
	if ds.Has(dataset.Precipitation) {
		res.Charts = append(res.Charts, chart.Spec{
			ID:     "precipitation",
			Title:  opt.tr("Annual precipitation", "연 강수량"),
			Kind:   chart.KindBar,
			X:      yearAxis(opt),
			Y:      chart.Axis{Label: ds.Title(dataset.Precipitation, opt.Locale), Unit: unitOf(ds, dataset.Precipitation)},
			Series: []chart.Series{seriesOf(ds, dataset.Precipitation, opt)},
		})
	}
	if c, ok := dualAxisChart("air-quality", opt.tr("Air quality", "대기질"),
		ds, []string{dataset.PM10, dataset.PM25}, []string{dataset.O3}, false, opt); ok {
		res.Charts = append(res.Charts, c)
	}

	keys := append(ds.KeysInGroup(dataset.GroupClimate), ds.KeysInGroup(dataset.GroupAirQuality)...)
	if len(keys) == 0 {
		res.note(opt.tr("no climate indicators loaded", "기후 지표가 없습니다"))
		return res
	}
	res.Tables = append(res.Tables, trendTable("climate-trends", opt.tr("Climate trends", "기후 추세"), ds, keys, opt))
	for _, k := range keys {
		res.Notes = append(res.Notes, trendNote(ds, k, opt))
	}
	return res
}
