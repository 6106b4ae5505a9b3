package analysis

// Loss answers the "max loss" question (minimum-sum contiguous range) by
// running MaxSum over the negated sequence and negating the total back.
// Indices are reported exactly as MaxSum found them.
type Loss struct {
	inner MaxSum
}

// Name identifies the algorithm in logs.
func (l Loss) Name() string { return l.inner.Name() + "-inverted" }

// Analyze returns the minimum-sum range of values.
func (l Loss) Analyze(values []float64) Result {
	res := l.inner.Analyze(Negate(values))
	if res.IsNoData() {
		return res
	}
	res.Total = -res.Total
	return res
}

// Negate returns a new slice with every element's sign flipped.
func Negate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}
	return out
}
