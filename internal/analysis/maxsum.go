package analysis

// MaxSum finds the maximum-sum contiguous range (Kadane's scan).
//
// Ties keep the earliest range found. A sequence of non-positive values yields
// its single largest element; an empty range is only ever returned as the
// NoData sentinel for empty input.
type MaxSum struct{}

// Name identifies the algorithm in logs.
func (MaxSum) Name() string { return "kadane" }

// Analyze runs a single left-to-right pass over values.
func (MaxSum) Analyze(values []float64) Result {
	if len(values) == 0 {
		return NoData()
	}

	best := Result{StartIndex: 0, EndIndex: 0, Total: values[0]}
	current, currentStart := values[0], 0

	for i := 1; i < len(values); i++ {
		v := values[i]
		if current+v < v {
			current, currentStart = v, i
		} else {
			current += v
		}
		if current > best.Total {
			best = Result{StartIndex: currentStart, EndIndex: i, Total: current}
		}
	}
	return best
}
