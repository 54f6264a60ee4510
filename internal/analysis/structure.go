package analysis

import (
	"math"
	"strings"

	"github.com/KaramelBytes/agridash/internal/chart"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

// AnalyzeStructure reports how farm households, cultivated area and crop
// production changed.
func AnalyzeStructure(ds *dataset.Dataset, opt Options) Result {
	res := Result{Title: AgricultureStructure.Label(opt.Locale)}
	keys := ds.KeysInGroup(dataset.GroupAgriculture)
	if len(keys) == 0 {
		res.note(opt.tr("no agriculture indicators loaded", "농업 지표가 없습니다"))
		return res
	}

	if c, ok := dualAxisChart("households-area", opt.tr("Farm households and cultivated area", "농가 수와 경지 면적"),
		ds, []string{dataset.FarmHouseholds}, []string{dataset.CultivatedArea}, true, opt); ok {
		res.Charts = append(res.Charts, c)
	}
	if c, ok := dualAxisChart("land-use", opt.tr("Paddy and upland area", "논·밭 면적"),
		ds, []string{dataset.PaddyArea, dataset.UplandArea}, nil, false, opt); ok {
		res.Charts = append(res.Charts, c)
	}
	var crops []string
	for _, k := range keys {
		if strings.HasSuffix(k, "_production") {
			crops = append(crops, k)
		}
	}
	if len(crops) > 0 {
		// crops are plotted on one axis only when they share a unit
		primary, secondary := crops[:1], []string(nil)
		for _, k := range crops[1:] {
			if unitOf(ds, k) == unitOf(ds, crops[0]) {
				primary = append(primary, k)
			} else {
				secondary = append(secondary, k)
			}
		}
		if c, ok := dualAxisChart("crop-production", opt.tr("Crop production", "작물 생산량"), ds, primary, secondary, false, opt); ok {
			res.Charts = append(res.Charts, c)
		}
	}

	t := trendTable("structure-trends", opt.tr("Agriculture structure trends", "농업 구조 추세"), ds, keys, opt)
	if ds.Has(dataset.FarmHouseholds) && ds.Has(dataset.CultivatedArea) {
		hh := ds.Values(dataset.FarmHouseholds)
		area := ds.Values(dataset.CultivatedArea)
		per := make([]float64, len(hh))
		for i := range hh {
			per[i] = math.NaN()
			if hh[i] != 0 {
				per[i] = area[i] / hh[i]
			}
		}
		s := Describe(ds.YearsFloat(), per)
		t.Add(opt.tr("Area per household (ha)", "농가당 경지 면적 (ha)"), s.First, s.Last, s.Mean, s.Min, s.Max, s.Slope, s.ChangePct)
		res.Charts = append(res.Charts, chart.Spec{
			ID:     "area-per-household",
			Title:  opt.tr("Cultivated area per household", "농가당 경지 면적"),
			Kind:   chart.KindBar,
			X:      yearAxis(opt),
			Y:      chart.Axis{Label: opt.tr("Area per household", "농가당 면적"), Unit: "ha"},
			Series: []chart.Series{{Name: opt.tr("Area per household", "농가당 면적"), X: ds.YearsFloat(), Y: per}},
		})
	}
	res.Tables = append(res.Tables, t)
	for _, k := range keys {
		res.Notes = append(res.Notes, trendNote(ds, k, opt))
	}
	return res
}
