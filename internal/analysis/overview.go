package analysis

import (
	"math"
	"strconv"

	"github.com/KaramelBytes/agridash/internal/dataset"
)

// AnalyzeOverview summarizes the cleaned dataset: descriptive statistics,
// the first rows, imputation counts and load warnings.
func AnalyzeOverview(ds *dataset.Dataset, opt Options) Result {
	res := Result{Title: Overview.Label(opt.Locale)}
	keys := ds.Keys()
	years := ds.YearsFloat()

	desc := Table{ID: "describe", Title: opt.tr("Descriptive statistics", "기술 통계"), Corner: opt.tr("Statistic", "통계량")}
	sums := make([]Summary, len(keys))
	for i, k := range keys {
		desc.Columns = append(desc.Columns, titleUnit(ds, k, opt.Locale))
		sums[i] = Describe(years, ds.Values(k))
	}
	stats := []struct {
		label string
		get   func(Summary) float64
	}{
		{"count", func(s Summary) float64 { return float64(s.Count) }},
		{"mean", func(s Summary) float64 { return s.Mean }},
		{"std", func(s Summary) float64 { return s.Std }},
		{"min", func(s Summary) float64 { return s.Min }},
		{"25%", func(s Summary) float64 { return s.Q1 }},
		{"50%", func(s Summary) float64 { return s.Median }},
		{"75%", func(s Summary) float64 { return s.Q3 }},
		{"max", func(s Summary) float64 { return s.Max }},
	}
	for _, st := range stats {
		vals := make([]float64, len(sums))
		for i, s := range sums {
			vals[i] = st.get(s)
		}
		desc.Add(st.label, vals...)
	}

	sample := Table{ID: "sample", Title: opt.tr("Sample rows", "데이터 미리보기"), Corner: opt.tr("Year", "연도")}
	sample.Columns = append(sample.Columns, desc.Columns...)
	n := opt.SampleRows
	if n <= 0 || n > ds.Len() {
		n = ds.Len()
	}
	all := make([][]float64, len(keys))
	for i, k := range keys {
		all[i] = ds.Values(k)
	}
	dsYears := ds.Years()
	for r := 0; r < n; r++ {
		vals := make([]float64, len(keys))
		for i := range keys {
			vals[i] = all[i][r]
		}
		sample.Add(strconv.Itoa(dsYears[r]), vals...)
	}

	quality := Table{
		ID:      "quality",
		Title:   opt.tr("Data quality", "데이터 품질"),
		Corner:  opt.tr("Indicator", "지표"),
		Columns: []string{opt.tr("Imputed", "보간 수"), opt.tr("Outliers", "이상치 수"), opt.tr("Max |z|", "최대 |z|")},
	}
	for i, k := range keys {
		idx, z := robustOutliers(all[i], opt.OutlierThreshold)
		maxZ := math.NaN()
		for _, v := range z {
			if math.IsNaN(maxZ) || math.Abs(v) > maxZ {
				maxZ = math.Abs(v)
			}
		}
		quality.Add(titleUnit(ds, k, opt.Locale), float64(ds.ImputedCount(k)), float64(len(idx)), maxZ)
		for j, ix := range idx {
			res.note(opt.tr("%s: %d looks like an outlier (robust |z|=%.2f)", "%s: %d년 값이 이상치로 보입니다 (robust |z|=%.2f)"),
				ds.Title(k, opt.Locale), dsYears[ix], math.Abs(z[j]))
		}
	}

	res.Tables = []Table{desc, sample, quality}
	if len(dsYears) > 0 {
		res.note(opt.tr("%d years (%d-%d), %d indicators", "%d개 연도 (%d-%d), 지표 %d개"),
			len(dsYears), dsYears[0], dsYears[len(dsYears)-1], len(keys))
	}
	res.Notes = append(res.Notes, ds.Warnings()...)
	return res
}
