package analysis

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/agridash/internal/chart"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

// AnalyzeCorrelationRegression reports the correlation matrix, simple
// regressions of the target on each predictor and one multiple regression
// under the small-sample predictor cap.
func AnalyzeCorrelationRegression(ds *dataset.Dataset, opt Options) Result {
	res := Result{Title: CorrelationRegression.Label(opt.Locale)}

	cm := Correlations(ds)
	titles := make([]string, len(cm.Columns))
	for i, k := range cm.Columns {
		titles[i] = ds.Title(k, opt.Locale)
	}
	corr := Table{ID: "correlation", Title: opt.tr("Pearson correlation", "피어슨 상관계수"), Columns: titles}
	for i := range cm.Columns {
		corr.Add(titles[i], cm.Values[i]...)
	}
	res.Tables = append(res.Tables, corr)
	if len(cm.Columns) >= 2 {
		res.Charts = append(res.Charts, chart.Spec{
			ID:    "correlation-heatmap",
			Title: opt.tr("Correlation heatmap", "상관관계 히트맵"),
			Kind:  chart.KindHeatmap,
			Grid:  &chart.Grid{Rows: titles, Cols: titles, Z: cm.Values, Min: -1, Max: 1},
		})
	}
	for _, k := range cm.Constant {
		res.note(opt.tr("%s is constant; its correlations are reported as 0", "%s 값이 일정하여 상관계수를 0으로 표시합니다"), ds.Title(k, opt.Locale))
	}

	if !ds.Has(opt.Target) {
		res.note(opt.tr("target %q not loaded; regression skipped", "목표 변수 %q 가 없어 회귀분석을 생략합니다"), opt.Target)
		return res
	}
	y := ds.Values(opt.Target)
	preds, missing := present(ds, opt.Predictors)
	if len(missing) > 0 {
		res.note(opt.tr("missing predictors: %s", "누락된 설명 변수: %s"), strings.Join(missing, ", "))
	}
	cols := make(map[string][]float64, len(preds))
	for _, k := range preds {
		cols[k] = ds.Values(k)
	}

	simple := Table{
		ID:      "simple-regression",
		Title:   opt.tr("Simple regressions on ", "단순 회귀: ") + ds.Title(opt.Target, opt.Locale),
		Corner:  opt.tr("Predictor", "설명 변수"),
		Columns: []string{opt.tr("Intercept", "절편"), opt.tr("Slope", "기울기"), "r", "R2"},
	}
	for _, k := range preds {
		fit, err := FitOLS([]string{k}, [][]float64{cols[k]}, y)
		if err != nil {
			simple.Add(ds.Title(k, opt.Locale))
			continue
		}
		simple.Add(ds.Title(k, opt.Locale), fit.Intercept, fit.Coef[0], pearson(cols[k], y), fit.R2)
	}
	res.Tables = append(res.Tables, simple)

	kept, dropped := selectPredictors(preds, cols, y, opt.MinResidualDF)
	if len(dropped) > 0 {
		res.note(opt.tr("%d observations allow %d predictor(s); excluded: %s", "관측치 %d개로 설명 변수 %d개만 사용합니다; 제외: %s"),
			len(y), len(kept), strings.Join(dropped, ", "))
	}
	if len(kept) == 0 {
		res.note(opt.tr("no usable predictors; multiple regression skipped", "사용할 설명 변수가 없어 다중 회귀를 생략합니다"))
		return res
	}
	X := make([][]float64, len(kept))
	for j, k := range kept {
		X[j] = cols[k]
	}
	fit, err := FitOLS(kept, X, y)
	if err != nil {
		if errors.Is(err, ErrSingular) {
			res.note(opt.tr("multiple regression failed: design matrix is singular", "다중 회귀 실패: 설계 행렬이 특이합니다"))
		} else {
			res.note(opt.tr("multiple regression failed: %v", "다중 회귀 실패: %v"), err)
		}
		return res
	}

	coef := Table{
		ID:      "coefficients",
		Title:   opt.tr("Multiple regression coefficients", "다중 회귀 계수"),
		Corner:  opt.tr("Term", "항"),
		Columns: []string{opt.tr("Estimate", "추정치"), opt.tr("Std. Error", "표준오차"), "t"},
	}
	coef.Add(opt.tr("(Intercept)", "(절편)"), fit.Intercept, fit.StdErr[0], fit.TValue[0])
	for j, k := range kept {
		coef.Add(ds.Title(k, opt.Locale), fit.Coef[j], fit.StdErr[j+1], fit.TValue[j+1])
	}
	quality := Table{
		ID:      "fit",
		Title:   opt.tr("Model fit", "모형 적합도"),
		Columns: []string{"n", opt.tr("Predictors", "설명 변수 수"), "R2", "Adj. R2", "RMSE", "Durbin-Watson", opt.tr("Condition", "조건수")},
	}
	quality.Add("OLS", float64(len(y)), float64(len(kept)), fit.R2, fit.AdjR2, fit.RMSE, fit.DurbinWatson, fit.Condition)
	resid := Table{
		ID:      "residuals",
		Title:   opt.tr("Fitted values", "적합값"),
		Corner:  opt.tr("Year", "연도"),
		Columns: []string{opt.tr("Actual", "실제값"), opt.tr("Fitted", "적합값"), opt.tr("Residual", "잔차")},
	}
	years := ds.Years()
	for i, yr := range years {
		resid.Add(strconv.Itoa(yr), y[i], fit.Fitted[i], fit.Residuals[i])
	}
	res.Tables = append(res.Tables, coef, quality, resid)

	x := ds.YearsFloat()
	res.Charts = append(res.Charts, chart.Spec{
		ID:    "regression-fit",
		Title: opt.tr("Actual vs fitted ", "실제값과 적합값: ") + ds.Title(opt.Target, opt.Locale),
		Kind:  chart.KindLine,
		X:     yearAxis(opt),
		Y:     chart.Axis{Label: ds.Title(opt.Target, opt.Locale), Unit: unitOf(ds, opt.Target)},
		Series: []chart.Series{
			{Name: opt.tr("Actual", "실제값"), X: x, Y: y},
			{Name: opt.tr("Fitted", "적합값"), X: x, Y: fit.Fitted, Dashed: true},
		},
	})

	if math.IsInf(fit.Condition, 0) || fit.Condition > opt.MaxCondition {
		res.note(opt.tr("predictors are nearly collinear (condition number %s); coefficients are unstable",
			"설명 변수 간 다중공선성이 큽니다 (조건수 %s); 계수가 불안정합니다"), FormatValue(fit.Condition))
	}
	if fit.DF <= 0 {
		res.note(opt.tr("no residual degrees of freedom; standard errors unavailable", "잔차 자유도가 없어 표준오차를 계산할 수 없습니다"))
	}
	return res
}
