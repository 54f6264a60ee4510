package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/ezoic/scigo/linear"
	"github.com/ezoic/scigo/preprocessing"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Regressor is a trainable model over row-major features.
type Regressor interface {
	Name() string
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) (float64, error)
}

// columns transposes row-major X.
func columns(X [][]float64) [][]float64 {
	if len(X) == 0 {
		return nil
	}
	cols := make([][]float64, len(X[0]))
	for j := range cols {
		cols[j] = make([]float64, len(X))
		for i := range X {
			cols[j][i] = X[i][j]
		}
	}
	return cols
}

// dense copies row-major X into a matrix.
func dense(X [][]float64) *mat.Dense {
	m := mat.NewDense(len(X), len(X[0]), nil)
	for i, row := range X {
		m.SetRow(i, row)
	}
	return m
}

func rowsOf(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// scaler standardizes features with a StandardScaler fitted on the
// training rows. Constant features map to 0.
type scaler struct {
	transform func(*mat.Dense) (mat.Matrix, error)
	constant  []bool
}

func fitScaler(X [][]float64) (scaler, error) {
	sc := preprocessing.NewStandardScaler(true, true)
	if err := sc.Fit(dense(X)); err != nil {
		return scaler{}, fmt.Errorf("fit scaler: %w", err)
	}
	cols := columns(X)
	constant := make([]bool, len(cols))
	for j, c := range cols {
		constant[j] = isConstant(c)
	}
	return scaler{
		transform: func(m *mat.Dense) (mat.Matrix, error) { return sc.Transform(m) },
		constant:  constant,
	}, nil
}

func (s scaler) apply(X [][]float64) ([][]float64, error) {
	z, err := s.transform(dense(X))
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}
	out := rowsOf(z)
	for _, row := range out {
		for j, v := range row {
			if s.constant[j] || math.IsNaN(v) || math.IsInf(v, 0) {
				row[j] = 0
			}
		}
	}
	return out, nil
}

type meanModel struct{ mean float64 }

func (m *meanModel) Name() string { return "Mean baseline" }

func (m *meanModel) Fit(_ [][]float64, y []float64) error {
	if len(y) == 0 {
		return ErrInsufficientData
	}
	m.mean = stat.Mean(y, nil)
	return nil
}

func (m *meanModel) Predict([]float64) (float64, error) { return m.mean, nil }

// linearModel is least squares on the strongest features under the
// predictor cap.
type linearModel struct {
	names []string
	minDF int

	idx     []int
	predict func(*mat.Dense) (mat.Matrix, error)
}

func (m *linearModel) Name() string { return "Linear regression" }

func (m *linearModel) Fit(X [][]float64, y []float64) error {
	cols := columns(X)
	byName := make(map[string][]float64, len(cols))
	pos := make(map[string]int, len(cols))
	for j, c := range cols {
		byName[m.names[j]] = c
		pos[m.names[j]] = j
	}
	kept, _ := selectPredictors(m.names, byName, y, m.minDF)
	if len(kept) == 0 {
		return fmt.Errorf("%w: no predictor fits %d rows", ErrInsufficientData, len(y))
	}
	m.idx = m.idx[:0]
	for _, k := range kept {
		m.idx = append(m.idx, pos[k])
	}
	sub := make([][]float64, len(X))
	for i := range X {
		sub[i] = m.pick(X[i])
	}
	lr := linear.NewLinearRegression()
	if err := lr.Fit(dense(sub), mat.NewDense(len(y), 1, append([]float64(nil), y...))); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	m.predict = func(x *mat.Dense) (mat.Matrix, error) { return lr.Predict(x) }
	return nil
}

func (m *linearModel) pick(x []float64) []float64 {
	sub := make([]float64, len(m.idx))
	for j, i := range m.idx {
		sub[j] = x[i]
	}
	return sub
}

func (m *linearModel) Predict(x []float64) (float64, error) {
	sub := m.pick(x)
	p, err := m.predict(mat.NewDense(1, len(sub), sub))
	if err != nil {
		return math.NaN(), fmt.Errorf("predict: %w", err)
	}
	return p.At(0, 0), nil
}

// ridgeModel is L2-penalized least squares on standardized features.
type ridgeModel struct {
	alpha float64

	sc    scaler
	yMean float64
	beta  *mat.VecDense
}

func (m *ridgeModel) Name() string { return fmt.Sprintf("Ridge (alpha=%g)", m.alpha) }

func (m *ridgeModel) Fit(X [][]float64, y []float64) error {
	if len(y) == 0 || len(X) != len(y) {
		return ErrInsufficientData
	}
	sc, err := fitScaler(X)
	if err != nil {
		return err
	}
	zr, err := sc.apply(X)
	if err != nil {
		return err
	}
	m.sc = sc
	m.yMean = stat.Mean(y, nil)
	n, p := len(X), len(X[0])
	z := dense(zr)
	yc := mat.NewVecDense(n, nil)
	for i := range y {
		yc.SetVec(i, y[i]-m.yMean)
	}
	var a mat.Dense
	a.Mul(z.T(), z)
	for j := 0; j < p; j++ {
		a.Set(j, j, a.At(j, j)+m.alpha)
	}
	var b mat.VecDense
	b.MulVec(z.T(), yc)
	m.beta = mat.NewVecDense(p, nil)
	if err := m.beta.SolveVec(&a, &b); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return nil
}

func (m *ridgeModel) Predict(x []float64) (float64, error) {
	z, err := m.sc.apply([][]float64{x})
	if err != nil {
		return math.NaN(), err
	}
	v := m.yMean
	for j, zj := range z[0] {
		v += m.beta.AtVec(j) * zj
	}
	return v, nil
}

// treeModel is a CART regression tree split on squared error.
type treeModel struct {
	maxDepth, minLeaf int
	root              *treeNode
}

type treeNode struct {
	feature     int
	threshold   float64
	value       float64
	left, right *treeNode
}

func (m *treeModel) Name() string { return fmt.Sprintf("Decision tree (depth %d)", m.maxDepth) }

func (m *treeModel) Fit(X [][]float64, y []float64) error {
	if len(y) == 0 {
		return ErrInsufficientData
	}
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	m.root = m.grow(X, y, idx, 0)
	return nil
}

func (m *treeModel) grow(X [][]float64, y []float64, idx []int, depth int) *treeNode {
	node := &treeNode{feature: -1}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	node.value = sum / float64(len(idx))
	minLeaf := max(m.minLeaf, 1)
	if depth >= m.maxDepth || len(idx) < 2*minLeaf {
		return node
	}
	best := sse(y, idx)
	var bestLeft, bestRight []int
	for f := range X[idx[0]] {
		order := append([]int(nil), idx...)
		sort.SliceStable(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })
		for cut := minLeaf; cut <= len(order)-minLeaf; cut++ {
			lo, hi := X[order[cut-1]][f], X[order[cut]][f]
			if lo == hi {
				continue
			}
			left, right := order[:cut], order[cut:]
			if s := sse(y, left) + sse(y, right); s < best-1e-12 {
				best = s
				node.feature, node.threshold = f, (lo+hi)/2
				bestLeft = append([]int(nil), left...)
				bestRight = append([]int(nil), right...)
			}
		}
	}
	if node.feature < 0 {
		return node
	}
	node.left = m.grow(X, y, bestLeft, depth+1)
	node.right = m.grow(X, y, bestRight, depth+1)
	return node
}

func sse(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	mean := sum / float64(len(idx))
	var s float64
	for _, i := range idx {
		s += (y[i] - mean) * (y[i] - mean)
	}
	return s
}

func (m *treeModel) Predict(x []float64) (float64, error) {
	n := m.root
	for n.feature >= 0 {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value, nil
}

// knnModel averages the k nearest training targets in standardized space.
type knnModel struct {
	k int

	sc scaler
	X  [][]float64
	y  []float64
}

func (m *knnModel) Name() string { return fmt.Sprintf("k-nearest neighbors (k=%d)", m.k) }

func (m *knnModel) Fit(X [][]float64, y []float64) error {
	if len(y) == 0 {
		return ErrInsufficientData
	}
	sc, err := fitScaler(X)
	if err != nil {
		return err
	}
	if m.X, err = sc.apply(X); err != nil {
		return err
	}
	m.sc = sc
	m.y = append([]float64(nil), y...)
	return nil
}

func (m *knnModel) Predict(x []float64) (float64, error) {
	zs, err := m.sc.apply([][]float64{x})
	if err != nil {
		return math.NaN(), err
	}
	z := zs[0]
	type nb struct {
		d float64
		i int
	}
	nbs := make([]nb, len(m.X))
	for i, row := range m.X {
		var d float64
		for j := range row {
			d += (row[j] - z[j]) * (row[j] - z[j])
		}
		nbs[i] = nb{d: math.Sqrt(d), i: i}
	}
	sort.SliceStable(nbs, func(a, b int) bool { return nbs[a].d < nbs[b].d })
	k := min(max(m.k, 1), len(nbs))
	var sum float64
	for _, n := range nbs[:k] {
		sum += m.y[n.i]
	}
	return sum / float64(k), nil
}
