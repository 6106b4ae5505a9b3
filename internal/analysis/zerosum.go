package analysis

import "github.com/shopspring/decimal"

// ZeroSum finds the longest contiguous range whose elements add up to Target
// using a single prefix-sum pass.
//
// Prefix sums are accumulated as decimals so that ranges such as
// [0.1, 0.2, -0.3] are recognised as summing to exactly zero.
type ZeroSum struct {
	Target float64
}

// Name identifies the algorithm in logs.
func (ZeroSum) Name() string { return "prefix-sum" }

// Analyze returns the longest range summing to z.Target, tie-broken by the
// earliest start. When no range qualifies (or values is empty) the NoData
// sentinel is returned.
func (z ZeroSum) Analyze(values []float64) Result {
	if len(values) == 0 {
		return NoData()
	}

	target := decimal.NewFromFloat(z.Target)
	// earliest index at which each prefix sum was seen; -1 stands for "before the first element"
	firstSeen := map[string]int{decimal.Zero.String(): -1}

	best := NoData()
	prefix := decimal.Zero
	for i, v := range values {
		prefix = prefix.Add(decimal.NewFromFloat(v))

		if start, ok := firstSeen[prefix.Sub(target).String()]; ok {
			if length := i - start; length > best.Len() {
				best = Result{StartIndex: start + 1, EndIndex: i, Total: z.Target}
			}
		}

		key := prefix.String()
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = i
		}
	}
	return best
}
