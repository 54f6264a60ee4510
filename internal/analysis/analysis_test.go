package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/agridash/internal/dataset"
)

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	years := []int{2016, 2017, 2018, 2019, 2020, 2021, 2022}
	cols := []dataset.Column{
		{Key: dataset.FarmHouseholds, Values: []float64{6523, 6448, 6390, 6312, 6245, 6180, 6102}},
		{Key: dataset.PaddyArea, Values: []float64{5874, 5790, 5712, 5650, 5581, 5520, 5463}},
		{Key: dataset.UplandArea, Values: []float64{3021, 2995, 2968, 2940, 2910, 2884, 2851}},
		{Key: dataset.CultivatedArea, Values: []float64{8895, 8785, 8680, 8590, 8491, 8404, 8314}},
		{Key: dataset.RiceProduction, Values: []float64{29870, 28410, 27950, 28730, 25640, 27120, 26480}},
		{Key: dataset.PotatoProduction, Values: []float64{6120, 5980, 5845, 5710, 5530, 5620, 5390},
			Imputed: []bool{false, false, true, false, false, false, false}},
		{Key: dataset.AvgTemperature, Values: []float64{13.9, 13.6, 13.7, 14.3, 13.8, 14.2, 13.9}},
		{Key: dataset.Precipitation, Values: []float64{1412.5, 1104.3, 1653.9, 1298.0, 1874.6, 1368.2, 1490.7}},
		{Key: dataset.PM10, Values: []float64{44, 41, 38, 37, 31, 33, 30}},
		{Key: dataset.PM25, Values: []float64{24, 22, 21, 20, 17, 18, 16}},
		{Key: dataset.O3, Values: []float64{0.031, 0.032, 0.031, 0.033, 0.032, 0.033, 0.034}},
	}
	ds, err := dataset.New(years, cols)
	require.NoError(t, err)
	return ds
}

func englishOptions() Options {
	opt := DefaultOptions()
	opt.Locale = "en"
	return opt
}

func TestRunCoversEverySelection(t *testing.T) {
	ds := fixture(t)
	for _, locale := range []string{"en", "ko"} {
		opt := DefaultOptions()
		opt.Locale = locale
		for _, sel := range Selections() {
			res, err := Run(sel, ds, opt)
			require.NoError(t, err, sel.Slug())
			assert.Equal(t, sel, res.Selection)
			assert.Equal(t, sel.Label(locale), res.Title)
			assert.NotEmpty(t, res.Tables, sel.Slug())
			for _, c := range res.Charts {
				assert.NoError(t, c.Validate(), "%s/%s", sel.Slug(), c.ID)
			}
		}
	}
	assert.Len(t, Selections(), 6)
}

func TestSelectionLabelsAndSlugs(t *testing.T) {
	want := map[Selection]string{
		Overview:              "데이터 개요",
		Climate:               "기후 변화 분석",
		AgricultureStructure:  "농업 구조 변화 분석",
		CorrelationRegression: "상관관계 및 회귀분석",
		TimeSeries:            "시계열 분석",
		MLModels:              "머신러닝 모델",
	}
	for sel, label := range want {
		assert.Equal(t, label, sel.Label("ko"))
		got, err := ParseSelection(sel.Slug())
		require.NoError(t, err)
		assert.Equal(t, sel, got)
	}
	got, err := ParseSelection("ML_Models")
	require.NoError(t, err)
	assert.Equal(t, MLModels, got)

	_, err = ParseSelection("weather")
	assert.ErrorIs(t, err, ErrUnknownSelection)
}

func TestRunRejectsBadInput(t *testing.T) {
	_, err := Run(Selection(42), fixture(t), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnknownSelection)

	_, err = Run(Climate, nil, DefaultOptions())
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, Climate, aerr.Selection)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestRunRecoversPanic(t *testing.T) {
	orig := analyzers[Overview]
	t.Cleanup(func() { analyzers[Overview] = orig })
	analyzers[Overview] = func(*dataset.Dataset, Options) Result { panic("boom") }

	_, err := Run(Overview, fixture(t), DefaultOptions())
	var aerr *Error
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, err.Error(), "boom")
}

func TestCorrelationMatrix(t *testing.T) {
	ds := fixture(t)
	cm := Correlations(ds)
	require.Len(t, cm.Values, len(ds.Keys()))
	for i := range cm.Values {
		assert.Equal(t, 1.0, cm.Values[i][i])
		for j := range cm.Values[i] {
			assert.Equal(t, cm.Values[i][j], cm.Values[j][i])
			assert.LessOrEqual(t, math.Abs(cm.Values[i][j]), 1.0)
		}
	}
	r, ok := cm.At(dataset.PaddyArea, dataset.CultivatedArea)
	require.True(t, ok)
	assert.Greater(t, r, 0.99)
}

func TestCorrelationConstantColumn(t *testing.T) {
	ds, err := dataset.New([]int{2016, 2017, 2018}, []dataset.Column{
		{Key: "a", Values: []float64{1, 2, 3}},
		{Key: "flat", Values: []float64{5, 5, 5}},
	})
	require.NoError(t, err)
	cm := Correlations(ds)
	r, _ := cm.At("a", "flat")
	assert.Equal(t, 0.0, r)
	assert.Equal(t, []string{"flat"}, cm.Constant)
}

func TestFitOLSRecoversLine(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v + 1
	}
	fit, err := FitOLS([]string{"x"}, [][]float64{x}, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, fit.Intercept, 1e-9)
	assert.InDelta(t, 2, fit.Coef[0], 1e-9)
	assert.InDelta(t, 1, fit.R2, 1e-9)
	assert.InDelta(t, 0, fit.RMSE, 1e-9)
	assert.Equal(t, 5, fit.DF)
	assert.InDelta(t, 15, fit.Predict([]float64{7}), 1e-9)
}

func TestFitOLSTooFewObservations(t *testing.T) {
	_, err := FitOLS([]string{"a", "b", "c"}, [][]float64{{1, 2, 3}, {3, 1, 2}, {2, 2, 1}}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSelectPredictorsCap(t *testing.T) {
	target := []float64{1, 2, 3, 4, 5, 6, 7}
	cols := map[string][]float64{
		"a":    {2, 4, 6, 8, 10, 12, 14},
		"b":    {1, 2, 3, 4, 5, 7, 6},
		"c":    {1, 3, 2, 4, 6, 5, 7},
		"d":    {2, 1, 4, 3, 6, 5, 7},
		"e":    {1, -1, 1, -1, 1, -1, 1},
		"flat": {3, 3, 3, 3, 3, 3, 3},
	}
	kept, dropped := selectPredictors([]string{"flat", "e", "d", "c", "b", "a"}, cols, target, 2)
	assert.Equal(t, []string{"d", "c", "b", "a"}, kept)
	assert.ElementsMatch(t, []string{"flat", "e"}, dropped)

	kept, _ = selectPredictors([]string{"a", "b"}, cols, target[:3], 2)
	assert.Len(t, kept, 1)
}

func TestCorrelationRegressionRespectsCap(t *testing.T) {
	res, err := Run(CorrelationRegression, fixture(t), englishOptions())
	require.NoError(t, err)

	coef, ok := res.Table("coefficients")
	require.True(t, ok)
	assert.Len(t, coef.Rows, 1+4)
	fit, ok := res.Table("fit")
	require.True(t, ok)
	df, _ := fit.Value("OLS", "Predictors")
	assert.Equal(t, 4.0, df)
	assert.Contains(t, strings.Join(res.Notes, "\n"), "7 observations allow 4 predictor(s)")

	hm, ok := res.Chart("correlation-heatmap")
	require.True(t, ok)
	assert.Equal(t, -1.0, hm.Grid.Min)
}

func TestCorrelationRegressionWithoutTarget(t *testing.T) {
	opt := englishOptions()
	opt.Target = "barley_production"
	res, err := Run(CorrelationRegression, fixture(t), opt)
	require.NoError(t, err)
	_, ok := res.Table("correlation")
	assert.True(t, ok)
	_, ok = res.Table("coefficients")
	assert.False(t, ok)
	assert.Contains(t, strings.Join(res.Notes, "\n"), "regression skipped")
}

func TestDecomposeKeepsMonotonicTrend(t *testing.T) {
	y := []float64{1, 2, 4, 7, 11, 16, 22}
	for _, w := range []int{1, 3, 5, 7, 9} {
		d := Decompose(y, w)
		require.Len(t, d.Trend, len(y))
		for i := 1; i < len(y); i++ {
			assert.GreaterOrEqual(t, d.Trend[i], d.Trend[i-1], "window %d index %d", w, i)
		}
		for i := range y {
			assert.InDelta(t, y[i], d.Trend[i]+d.Residual[i], 1e-12)
		}
	}
}

func TestEffectiveWindow(t *testing.T) {
	cases := []struct{ w, n, want int }{
		{3, 7, 3},
		{4, 7, 3},
		{9, 7, 7},
		{9, 6, 5},
		{0, 7, 1},
		{3, 1, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, EffectiveWindow(c.w, c.n), "w=%d n=%d", c.w, c.n)
	}
}

func TestForecast(t *testing.T) {
	x := []float64{2016, 2017, 2018, 2019}
	y := []float64{10, 12, 14, 16}
	fx, fy, slope := Forecast(x, y, 3)
	assert.Equal(t, []float64{2020, 2021, 2022}, fx)
	require.Len(t, fy, 3)
	assert.InDelta(t, 18, fy[0], 1e-6)
	assert.InDelta(t, 22, fy[2], 1e-6)
	assert.InDelta(t, 2, slope, 1e-9)

	fx, fy, slope = Forecast(x[:2], y[:2], 1)
	assert.Equal(t, []float64{2018}, fx)
	assert.InDelta(t, 14, fy[0], 1e-9)
	assert.InDelta(t, 2, slope, 1e-9)

	fx, _, _ = Forecast(x[:1], y[:1], 3)
	assert.Nil(t, fx)
}

func TestTimeSeriesShortDatasets(t *testing.T) {
	two, err := dataset.New([]int{2016, 2017}, []dataset.Column{
		{Key: dataset.RiceProduction, Values: []float64{29870, 28410}},
	})
	require.NoError(t, err)
	res, err := Run(TimeSeries, two, englishOptions())
	require.NoError(t, err)
	fc, ok := res.Table("forecast")
	require.True(t, ok)
	assert.Equal(t, []string{"Slope/yr", "2018", "2019", "2020"}, fc.Columns)
	slope, ok := fc.Value("Rice production", "Slope/yr")
	require.True(t, ok)
	assert.InDelta(t, -1460, slope, 1e-6)
	notes := strings.Join(res.Notes, "\n")
	assert.Contains(t, notes, "too few for trend decomposition")
	assert.NotContains(t, notes, "forecast skipped")

	one, err := dataset.New([]int{2016}, []dataset.Column{
		{Key: dataset.RiceProduction, Values: []float64{29870}},
	})
	require.NoError(t, err)
	res, err = Run(TimeSeries, one, englishOptions())
	require.NoError(t, err)
	_, ok = res.Table("forecast")
	assert.False(t, ok)
	assert.Contains(t, strings.Join(res.Notes, "\n"), "forecast skipped: 1 year(s)")
}

func TestTimeSeriesResult(t *testing.T) {
	res, err := Run(TimeSeries, fixture(t), englishOptions())
	require.NoError(t, err)
	c, ok := res.Chart("series-" + dataset.RiceProduction)
	require.True(t, ok)
	require.Len(t, c.Series, 3)
	assert.Equal(t, 2025.0, c.Series[2].X[len(c.Series[2].X)-1])
	fc, ok := res.Table("forecast")
	require.True(t, ok)
	assert.Equal(t, []string{"Slope/yr", "2023", "2024", "2025"}, fc.Columns)
}

func TestModelMetricsSchema(t *testing.T) {
	res, err := Run(MLModels, fixture(t), englishOptions())
	require.NoError(t, err)
	metrics, ok := res.Table("model-metrics")
	require.True(t, ok)
	require.Len(t, metrics.Rows, 5)
	seen := map[string]bool{}
	for _, row := range metrics.Rows {
		assert.Len(t, row.Values, len(metrics.Columns))
		assert.False(t, seen[row.Label], row.Label)
		seen[row.Label] = true
		rmse := row.Values[1]
		assert.False(t, math.IsNaN(rmse), row.Label)
	}
	preds, ok := res.Table("model-predictions")
	require.True(t, ok)
	assert.Len(t, preds.Rows, 7)
	assert.Len(t, preds.Columns, 6)
}

func TestLeaveOneOutMeanBaseline(t *testing.T) {
	X := [][]float64{{0}, {0}, {0}}
	preds, err := LeaveOneOut(func() Regressor { return &meanModel{} }, X, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2.5, 2, 1.5}, preds, 1e-12)

	_, err = LeaveOneOut(func() Regressor { return &meanModel{} }, X[:2], []float64{1, 2})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestTreeAndKNN(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{1, 1, 1, 5, 5, 5}
	predict := func(m Regressor, x float64) float64 {
		t.Helper()
		p, err := m.Predict([]float64{x})
		require.NoError(t, err)
		return p
	}

	tree := &treeModel{maxDepth: 1, minLeaf: 1}
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, 1.0, predict(tree, 2.5))
	assert.Equal(t, 5.0, predict(tree, 11.5))

	knn := &knnModel{k: 1}
	require.NoError(t, knn.Fit(X, y))
	assert.Equal(t, 5.0, predict(knn, 9))

	ridge := &ridgeModel{alpha: 0.001}
	require.NoError(t, ridge.Fit(X, y))
	assert.Less(t, predict(ridge, 1), predict(ridge, 12))
}

func TestLinearModelRecoversLine(t *testing.T) {
	X := [][]float64{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}, {6, 5}}
	y := []float64{3, 5, 7, 9, 11, 13}
	m := &linearModel{names: []string{"x", "flat"}, minDF: 2}
	require.NoError(t, m.Fit(X, y))
	p, err := m.Predict([]float64{10, 5})
	require.NoError(t, err)
	assert.InDelta(t, 21.0, p, 1e-6)
}

func TestScalerZeroesConstantFeature(t *testing.T) {
	sc, err := fitScaler([][]float64{{1, 7}, {2, 7}, {3, 7}})
	require.NoError(t, err)
	z, err := sc.apply([][]float64{{2, 9}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, z[0][0], 1e-12)
	assert.Equal(t, 0.0, z[0][1])
}

func TestScore(t *testing.T) {
	m := Score([]float64{2, 4, 0}, []float64{1, 5, 0})
	assert.InDelta(t, 2.0/3, m.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3), m.RMSE, 1e-12)
	assert.InDelta(t, 37.5, m.MAPE, 1e-9)
	assert.InDelta(t, 1-2.0/8, m.R2, 1e-12)

	flat := Score([]float64{3, 3, 3}, []float64{3, 3, 3})
	assert.Equal(t, 1.0, flat.R2)
}

func TestOverview(t *testing.T) {
	res, err := Run(Overview, fixture(t), englishOptions())
	require.NoError(t, err)
	desc, ok := res.Table("describe")
	require.True(t, ok)
	count, ok := desc.Value("count", "Rice production (t)")
	require.True(t, ok, desc.Columns)
	assert.Equal(t, 7.0, count)
	q, _ := res.Table("quality")
	imputed, _ := q.Value("Potato production (t)", "Imputed")
	assert.Equal(t, 1.0, imputed)
	sample, _ := res.Table("sample")
	assert.Len(t, sample.Rows, 5)
}

func TestClimateWithoutClimateColumns(t *testing.T) {
	ds, err := dataset.New([]int{2016, 2017, 2018}, []dataset.Column{
		{Key: dataset.RiceProduction, Values: []float64{1, 2, 3}},
	})
	require.NoError(t, err)
	res, err := Run(Climate, ds, englishOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Charts)
	assert.Contains(t, strings.Join(res.Notes, "\n"), "missing indicators")
}

func TestRowJSONEncodesNaNAsNull(t *testing.T) {
	b, err := json.Marshal(Row{Label: "a", Values: []float64{1.5, math.NaN()}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"a","values":[1.5,null]}`, string(b))
}

func TestMarkdown(t *testing.T) {
	res, err := Run(Climate, fixture(t), englishOptions())
	require.NoError(t, err)
	md := res.Markdown()
	assert.True(t, strings.HasPrefix(md, "[CLIMATE ANALYSIS]"))
	assert.Contains(t, md, "[TABLE: Climate trends]")
	assert.Contains(t, md, "[CHARTS]")
	assert.Contains(t, md, "[NOTES]")
}

func TestErrorWrapping(t *testing.T) {
	err := &Error{Selection: TimeSeries, Err: ErrInsufficientData}
	assert.True(t, errors.Is(err, ErrInsufficientData))
	assert.Equal(t, "analysis time-series failed: insufficient data", err.Error())
}

func collinearDataset(t *testing.T, dup func(i int, v float64) float64) *dataset.Dataset {
	t.Helper()
	pm10 := []float64{44, 41, 38, 37, 31, 33, 30}
	scaled := make([]float64, len(pm10))
	for i, v := range pm10 {
		scaled[i] = dup(i, v)
	}
	ds, err := dataset.New([]int{2016, 2017, 2018, 2019, 2020, 2021, 2022}, []dataset.Column{
		{Key: dataset.RiceProduction, Values: []float64{29870, 28410, 27950, 28730, 25640, 27120, 26480}},
		{Key: dataset.PM10, Values: pm10},
		{Key: "pm10_scaled", Label: "PM10 scaled", Values: scaled},
	})
	require.NoError(t, err)
	return ds
}

func TestCorrelationRegressionDuplicatePredictors(t *testing.T) {
	opt := englishOptions()
	opt.Predictors = []string{dataset.PM10, "pm10_scaled"}
	ds := collinearDataset(t, func(_ int, v float64) float64 { return v })

	res, err := Run(CorrelationRegression, ds, opt)
	require.NoError(t, err)
	assert.Regexp(t, "nearly collinear|design matrix is singular", strings.Join(res.Notes, "\n"))
	corr, ok := res.Table("correlation")
	require.True(t, ok)
	r, ok := corr.Value("PM10", "PM10 scaled")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)
	simple, ok := res.Table("simple-regression")
	require.True(t, ok)
	assert.Len(t, simple.Rows, 2)
}

func TestCorrelationRegressionNearlyCollinear(t *testing.T) {
	opt := englishOptions()
	opt.Predictors = []string{dataset.PM10, "pm10_scaled"}
	ds := collinearDataset(t, func(i int, v float64) float64 {
		eps := 1e-3
		if i%2 == 1 {
			eps = -eps
		}
		return 2*v + eps
	})

	res, err := Run(CorrelationRegression, ds, opt)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Notes, "\n"), "nearly collinear")
	_, ok := res.Table("correlation")
	assert.True(t, ok)
	_, ok = res.Table("simple-regression")
	assert.True(t, ok)
	fit, ok := res.Table("fit")
	require.True(t, ok)
	cond, _ := fit.Value("OLS", "Condition")
	assert.Greater(t, cond, opt.MaxCondition)
}
