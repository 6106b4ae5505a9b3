package analysis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroSum_Analyze_TableDriven(t *testing.T) {
	cases := []struct {
		name string
		in   []float64
		want Result
	}{
		{name: "empty", in: []float64{}, want: NoData()},
		{name: "no zero range", in: []float64{1, 2, 3}, want: NoData()},
		{name: "whole sequence", in: []float64{1, -1, 2, -2}, want: Result{StartIndex: 0, EndIndex: 3, Total: 0}},
		{name: "longest not first", in: []float64{1, -1, 5, 2, -3, 1, 0}, want: Result{StartIndex: 3, EndIndex: 6, Total: 0}},
		{name: "single zero", in: []float64{4, 0, 4}, want: Result{StartIndex: 1, EndIndex: 1, Total: 0}},
		{name: "tie keeps earliest", in: []float64{2, -2, 7, 3, -3}, want: Result{StartIndex: 0, EndIndex: 1, Total: 0}},
		{name: "decimal fractions", in: []float64{0.1, 0.2, -0.3}, want: Result{StartIndex: 0, EndIndex: 2, Total: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ZeroSum{}.Analyze(tc.in))
		})
	}
}

func TestZeroSum_NonZeroTarget(t *testing.T) {
	res := ZeroSum{Target: 5}.Analyze([]float64{1, 2, 3, -1, 1})
	assert.Equal(t, Result{StartIndex: 0, EndIndex: 3, Total: 5}, res)
}

func TestZeroSum_IsLongestQualifyingRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 300; n++ {
		values := make([]float64, 1+rng.Intn(14))
		for i := range values {
			values[i] = float64(rng.Intn(7) - 3)
		}

		bestLen, bestStart := 0, -1
		for i := range values {
			sum := 0.0
			for j := i; j < len(values); j++ {
				sum += values[j]
				if sum == 0 && j-i+1 > bestLen {
					bestLen, bestStart = j-i+1, i
				}
			}
		}

		res := ZeroSum{}.Analyze(values)
		if bestLen == 0 {
			require.True(t, res.IsNoData(), "values=%v", values)
			continue
		}
		require.Equal(t, bestLen, res.Len(), "values=%v", values)
		require.Equal(t, bestStart, res.StartIndex, "values=%v", values)
		require.Zero(t, sumRange(values, res.StartIndex, res.EndIndex))
	}
}
