package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// OLSFit is an ordinary least-squares fit with an intercept.
type OLSFit struct {
	Predictors []string
	Intercept  float64
	Coef       []float64
	// StdErr and TValue hold the intercept at index 0.
	StdErr    []float64
	TValue    []float64
	Fitted    []float64
	Residuals []float64
	R2        float64
	AdjR2     float64
	RMSE      float64
	DF        int
	// Condition is the 2-norm condition number of the standardized design.
	Condition    float64
	DurbinWatson float64
}

// FitOLS regresses y on the predictor columns cols (cols[j][i] is
// observation i of predictor j).
func FitOLS(names []string, cols [][]float64, y []float64) (*OLSFit, error) {
	n, p := len(y), len(cols)
	if n < p+1 || n < 2 {
		return nil, fmt.Errorf("%w: %d observations for %d predictors", ErrInsufficientData, n, p)
	}
	design := mat.NewDense(n, p+1, nil)
	std := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		std.Set(i, 0, 1)
	}
	for j, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("predictor %s has %d values, want %d", names[j], len(c), n)
		}
		m, s := stat.MeanStdDev(c, nil)
		for i, v := range c {
			design.Set(i, j+1, v)
			if s > 0 {
				std.Set(i, j+1, (v-m)/s)
			}
		}
	}

	fit := &OLSFit{Predictors: append([]string(nil), names...), DF: n - p - 1}
	fit.Condition = mat.Cond(std, 2)

	var qr mat.QR
	qr.Factorize(design)
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	fit.Intercept = beta.At(0, 0)
	fit.Coef = make([]float64, p)
	for j := range fit.Coef {
		fit.Coef[j] = beta.At(j+1, 0)
	}

	fit.Fitted = make([]float64, n)
	fit.Residuals = make([]float64, n)
	var sse float64
	for i := 0; i < n; i++ {
		v := fit.Intercept
		for j := range cols {
			v += fit.Coef[j] * cols[j][i]
		}
		fit.Fitted[i] = v
		fit.Residuals[i] = y[i] - v
		sse += fit.Residuals[i] * fit.Residuals[i]
	}
	fit.R2 = rSquared(y, sse)
	fit.RMSE = math.Sqrt(sse / float64(n))
	fit.AdjR2 = math.NaN()
	if fit.DF > 0 && !math.IsNaN(fit.R2) {
		fit.AdjR2 = 1 - (1-fit.R2)*float64(n-1)/float64(fit.DF)
	}
	fit.DurbinWatson = math.NaN()
	if sse > 0 {
		var num float64
		for i := 1; i < n; i++ {
			d := fit.Residuals[i] - fit.Residuals[i-1]
			num += d * d
		}
		fit.DurbinWatson = num / sse
	}

	fit.StdErr = make([]float64, p+1)
	fit.TValue = make([]float64, p+1)
	for j := range fit.StdErr {
		fit.StdErr[j], fit.TValue[j] = math.NaN(), math.NaN()
	}
	if fit.DF > 0 {
		var xtx, inv mat.Dense
		xtx.Mul(design.T(), design)
		if err := inv.Inverse(&xtx); err == nil {
			sigma2 := sse / float64(fit.DF)
			for j := 0; j <= p; j++ {
				se := math.Sqrt(sigma2 * inv.At(j, j))
				fit.StdErr[j] = se
				b := fit.Intercept
				if j > 0 {
					b = fit.Coef[j-1]
				}
				if se > 0 {
					fit.TValue[j] = b / se
				}
			}
		}
	}
	return fit, nil
}

// Predict evaluates the fitted equation at x (one value per predictor).
func (f *OLSFit) Predict(x []float64) float64 {
	v := f.Intercept
	for j, c := range f.Coef {
		v += c * x[j]
	}
	return v
}

// rSquared is 1-SSE/SST. A constant target yields 1 for an exact fit and
// NaN otherwise.
func rSquared(y []float64, sse float64) float64 {
	m := stat.Mean(y, nil)
	var sst float64
	for _, v := range y {
		sst += (v - m) * (v - m)
	}
	if sst == 0 {
		if sse < 1e-12 {
			return 1
		}
		return math.NaN()
	}
	return 1 - sse/sst
}
