package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/agridash/internal/dataset"
)

// Summary holds descriptive statistics of one series.
type Summary struct {
	Count               int
	Mean, Std           float64
	Min, Q1, Median, Q3 float64
	Max                 float64
	First, Last         float64
	Slope, Intercept    float64
	ChangePct           float64
}

// Describe computes descriptive statistics and the least-squares slope
// against x. Std uses the n-1 denominator.
func Describe(x, y []float64) Summary {
	s := Summary{Count: len(y)}
	if len(y) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan,
			First: nan, Last: nan, Slope: nan, Intercept: nan, ChangePct: nan}
	}
	sorted := append([]float64(nil), y...)
	sort.Float64s(sorted)
	s.Mean, s.Std = stat.MeanStdDev(y, nil)
	if len(y) < 2 {
		s.Std = math.NaN()
	}
	s.Min, s.Max = sorted[0], sorted[len(sorted)-1]
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	s.First, s.Last = y[0], y[len(y)-1]
	s.ChangePct = pctChange(s.First, s.Last)
	s.Slope, s.Intercept = math.NaN(), math.NaN()
	if len(y) >= 2 && len(x) == len(y) {
		s.Intercept, s.Slope = stat.LinearRegression(x, y, nil, false)
	}
	return s
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return math.NaN()
	}
	return (to - from) / math.Abs(from) * 100
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// robustOutliers returns indexes whose robust z-score exceeds threshold.
func robustOutliers(vals []float64, threshold float64) (idx []int, z []float64) {
	if len(vals) < 5 || threshold <= 0 {
		return nil, nil
	}
	med, mad := medianMAD(vals)
	if mad == 0 {
		return nil, nil
	}
	for i, v := range vals {
		rz := 0.6745 * (v - med) / mad
		if math.Abs(rz) > threshold {
			idx = append(idx, i)
			z = append(z, rz)
		}
	}
	return idx, z
}

func isConstant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// present filters keys to those the dataset carries.
func present(ds *dataset.Dataset, keys []string) (have, missing []string) {
	for _, k := range keys {
		if ds.Has(k) {
			have = append(have, k)
		} else {
			missing = append(missing, k)
		}
	}
	return have, missing
}

// titleUnit returns "Label (unit)".
func titleUnit(ds *dataset.Dataset, key, locale string) string {
	c, ok := ds.Column(key)
	if !ok {
		return key
	}
	if c.Unit == "" {
		return c.Title(locale)
	}
	return fmt.Sprintf("%s (%s)", c.Title(locale), c.Unit)
}

func unitOf(ds *dataset.Dataset, key string) string {
	c, _ := ds.Column(key)
	return c.Unit
}
