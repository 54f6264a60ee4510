package dataset

import "math"

// interpolate fills NaN gaps linearly between the nearest observed neighbours;
// leading and trailing gaps take the nearest observed value. It returns the
// filled copy, the imputation mask and the number of observed cells.
func interpolate(vals []float64) ([]float64, []bool, int) {
	out := make([]float64, len(vals))
	imputed := make([]bool, len(vals))
	copy(out, vals)

	var idx []int
	for i, v := range vals {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return out, imputed, 0
	}
	for i := range out {
		if !math.IsNaN(out[i]) {
			continue
		}
		imputed[i] = true
		// nearest observed on each side
		lo, hi := -1, -1
		for _, j := range idx {
			if j < i {
				lo = j
			} else if hi < 0 {
				hi = j
			}
		}
		switch {
		case lo < 0:
			out[i] = vals[hi]
		case hi < 0:
			out[i] = vals[lo]
		default:
			w := float64(i-lo) / float64(hi-lo)
			out[i] = vals[lo]*(1-w) + vals[hi]*w
		}
	}
	return out, imputed, len(idx)
}
