package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ezoic/scigo/metrics"
	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/agridash/internal/chart"
	"github.com/KaramelBytes/agridash/internal/dataset"
)

// Metrics are the evaluation columns every model reports.
type Metrics struct {
	MAE, RMSE, R2, MAPE float64
	TrainR2             float64
}

// ModelScore is one row of the model comparison.
type ModelScore struct {
	Name        string
	Metrics     Metrics
	Predictions []float64
	Err         error
}

// newRegressors returns fresh, untrained instances of every model.
func newRegressors(features []string, opt Options) []func() Regressor {
	return []func() Regressor{
		func() Regressor { return &meanModel{} },
		func() Regressor { return &linearModel{names: features, minDF: opt.MinResidualDF} },
		func() Regressor { return &ridgeModel{alpha: opt.RidgeAlpha} },
		func() Regressor { return &treeModel{maxDepth: opt.TreeMaxDepth, minLeaf: opt.TreeMinLeaf} },
		func() Regressor { return &knnModel{k: opt.KNNK} },
	}
}

// LeaveOneOut trains on n-1 rows and predicts the held-out one, for every row.
func LeaveOneOut(newModel func() Regressor, X [][]float64, y []float64) ([]float64, error) {
	n := len(y)
	if n < 3 {
		return nil, fmt.Errorf("%w: leave-one-out needs 3 rows, have %d", ErrInsufficientData, n)
	}
	preds := make([]float64, n)
	for hold := 0; hold < n; hold++ {
		trainX := make([][]float64, 0, n-1)
		trainY := make([]float64, 0, n-1)
		for i := 0; i < n; i++ {
			if i != hold {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}
		m := newModel()
		if err := m.Fit(trainX, trainY); err != nil {
			return nil, fmt.Errorf("fold %d: %w", hold, err)
		}
		p, err := m.Predict(X[hold])
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", hold, err)
		}
		preds[hold] = p
	}
	return preds, nil
}

// Score computes error metrics of predictions against actual values.
// MAPE skips zero actuals.
func Score(actual, pred []float64) Metrics {
	nan := math.NaN()
	m := Metrics{MAE: nan, RMSE: nan, R2: nan, MAPE: nan, TrainR2: nan}
	if len(actual) == 0 || len(actual) != len(pred) {
		return m
	}
	yt := mat.NewVecDense(len(actual), append([]float64(nil), actual...))
	yp := mat.NewVecDense(len(pred), append([]float64(nil), pred...))
	m.MAE = orNaN(metrics.MAE(yt, yp))
	m.RMSE = orNaN(metrics.RMSE(yt, yp))
	if isConstant(actual) {
		var sse float64
		for i, a := range actual {
			sse += (a - pred[i]) * (a - pred[i])
		}
		m.R2 = rSquared(actual, sse)
	} else {
		m.R2 = orNaN(metrics.R2Score(yt, yp))
	}

	var pct float64
	npct := 0
	for i, a := range actual {
		if a != 0 {
			pct += math.Abs((a - pred[i]) / a)
			npct++
		}
	}
	if npct > 0 {
		m.MAPE = pct / float64(npct) * 100
	}
	return m
}

func orNaN(v float64, err error) float64 {
	if err != nil {
		return math.NaN()
	}
	return v
}

// EvaluateModels scores every model with leave-one-out cross-validation
// plus an in-sample fit.
func EvaluateModels(features []string, X [][]float64, y []float64, opt Options) []ModelScore {
	var out []ModelScore
	for _, mk := range newRegressors(features, opt) {
		s := ModelScore{Name: mk().Name()}
		nan := math.NaN()
		s.Metrics = Metrics{MAE: nan, RMSE: nan, R2: nan, MAPE: nan, TrainR2: nan}
		preds, err := LeaveOneOut(mk, X, y)
		if err != nil {
			s.Err = err
			out = append(out, s)
			continue
		}
		s.Predictions = preds
		s.Metrics = Score(y, preds)
		if in, err := fitted(mk(), X, y); err == nil {
			s.Metrics.TrainR2 = Score(y, in).R2
		}
		out = append(out, s)
	}
	return out
}

// fitted trains on every row and returns the in-sample predictions.
func fitted(m Regressor, X [][]float64, y []float64) ([]float64, error) {
	if err := m.Fit(X, y); err != nil {
		return nil, err
	}
	in := make([]float64, len(y))
	for i := range X {
		p, err := m.Predict(X[i])
		if err != nil {
			return nil, err
		}
		in[i] = p
	}
	return in, nil
}

// AnalyzeModels compares regression models that predict the target from
// climate and farm-structure features.
func AnalyzeModels(ds *dataset.Dataset, opt Options) Result {
	res := Result{Title: MLModels.Label(opt.Locale)}
	if !ds.Has(opt.Target) {
		res.note(opt.tr("target %q not loaded; models skipped", "목표 변수 %q 가 없어 모델을 생략합니다"), opt.Target)
		return res
	}
	var features []string
	for _, k := range opt.ModelFeatures {
		if k != opt.Target && ds.Has(k) {
			features = append(features, k)
		}
	}
	if len(features) == 0 {
		res.note(opt.tr("no model features loaded", "모델 입력 변수가 없습니다"))
		return res
	}
	y := ds.Values(opt.Target)
	cols := make([][]float64, len(features))
	for j, k := range features {
		cols[j] = ds.Values(k)
	}
	X := make([][]float64, len(y))
	for i := range y {
		X[i] = make([]float64, len(features))
		for j := range features {
			X[i][j] = cols[j][i]
		}
	}

	scores := EvaluateModels(features, X, y, opt)
	metrics := Table{
		ID:      "model-metrics",
		Title:   opt.tr("Leave-one-out evaluation", "Leave-one-out 교차검증"),
		Corner:  opt.tr("Model", "모델"),
		Columns: []string{"MAE", "RMSE", "R2", "MAPE (%)", "Train R2"},
	}
	x := ds.YearsFloat()
	pc := chart.Spec{
		ID:     "model-predictions",
		Title:  opt.tr("Held-out predictions of ", "교차검증 예측: ") + ds.Title(opt.Target, opt.Locale),
		Kind:   chart.KindLine,
		X:      yearAxis(opt),
		Y:      chart.Axis{Label: ds.Title(opt.Target, opt.Locale), Unit: unitOf(ds, opt.Target)},
		Series: []chart.Series{{Name: opt.tr("Actual", "실제값"), X: x, Y: y}},
	}
	pt := Table{
		ID:      "model-predictions",
		Title:   opt.tr("Held-out predictions", "교차검증 예측값"),
		Corner:  opt.tr("Year", "연도"),
		Columns: []string{opt.tr("Actual", "실제값")},
	}
	var bestName string
	bestRMSE := math.Inf(1)
	for _, s := range scores {
		m := s.Metrics
		metrics.Add(s.Name, m.MAE, m.RMSE, m.R2, m.MAPE, m.TrainR2)
		if s.Err != nil {
			res.note("%s: %v", s.Name, s.Err)
			continue
		}
		pc.Series = append(pc.Series, chart.Series{Name: s.Name, X: x, Y: s.Predictions, Dashed: true})
		pt.Columns = append(pt.Columns, s.Name)
		if m.RMSE < bestRMSE {
			bestRMSE, bestName = m.RMSE, s.Name
		}
	}
	years := ds.Years()
	for i, yr := range years {
		vals := []float64{y[i]}
		for _, s := range scores {
			if s.Err == nil {
				vals = append(vals, s.Predictions[i])
			}
		}
		pt.Add(strconv.Itoa(yr), vals...)
	}
	res.Tables = append(res.Tables, metrics)
	if len(pt.Columns) > 1 {
		res.Tables = append(res.Tables, pt)
		res.Charts = append(res.Charts, pc)
	}
	res.note(opt.tr("target: %s; features: %s", "목표 변수: %s; 입력 변수: %s"), opt.Target, strings.Join(features, ", "))
	if bestName != "" {
		res.note(opt.tr("lowest held-out RMSE: %s", "교차검증 RMSE 최저 모델: %s"), bestName)
	}
	res.note(opt.tr("%d observations: metrics are indicative only", "관측치가 %d개뿐이라 지표는 참고용입니다"), len(y))
	return res
}
