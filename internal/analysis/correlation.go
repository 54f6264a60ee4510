package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/agridash/internal/dataset"
)

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
	// Constant lists columns with zero variance; their off-diagonal
	// coefficients are reported as 0.
	Constant []string
}

// Correlations computes pairwise Pearson coefficients over the given keys
// (all dataset columns when keys is empty).
func Correlations(ds *dataset.Dataset, keys ...string) CorrMatrix {
	if len(keys) == 0 {
		keys = ds.Keys()
	}
	keys, _ = present(ds, keys)
	n := len(keys)
	cm := CorrMatrix{Columns: keys, Values: make([][]float64, n)}
	cols := make([][]float64, n)
	for i, k := range keys {
		cols[i] = ds.Values(k)
		cm.Values[i] = make([]float64, n)
		if len(cols[i]) < 2 || isConstant(cols[i]) {
			cm.Constant = append(cm.Constant, k)
		}
	}
	for i := 0; i < n; i++ {
		cm.Values[i][i] = 1
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i], cols[j])
			cm.Values[i][j] = r
			cm.Values[j][i] = r
		}
	}
	return cm
}

// pearson returns r clamped to [-1,1]; undefined coefficients become 0.
func pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// At returns the coefficient for two keys.
func (c CorrMatrix) At(a, b string) (float64, bool) {
	ia, ib := -1, -1
	for i, k := range c.Columns {
		if k == a {
			ia = i
		}
		if k == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return 0, false
	}
	return c.Values[ia][ib], true
}

// selectPredictors keeps at most n-1-minDF non-constant candidates,
// strongest |r| with the target first. Order of the kept slice follows
// candidates.
func selectPredictors(candidates []string, cols map[string][]float64, target []float64, minDF int) (kept, dropped []string) {
	type cand struct {
		key string
		r   float64
		pos int
	}
	var cs []cand
	for i, k := range candidates {
		if c := cols[k]; len(c) < 2 || isConstant(c) {
			dropped = append(dropped, k)
			continue
		}
		cs = append(cs, cand{key: k, r: math.Abs(pearson(cols[k], target)), pos: i})
	}
	limit := len(target) - 1 - minDF
	if limit < 1 && len(target) >= 3 {
		limit = 1
	}
	if limit < 0 {
		limit = 0
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].r > cs[j].r })
	if len(cs) > limit {
		for _, c := range cs[limit:] {
			dropped = append(dropped, c.key)
		}
		cs = cs[:limit]
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].pos < cs[j].pos })
	for _, c := range cs {
		kept = append(kept, c.key)
	}
	return kept, dropped
}
