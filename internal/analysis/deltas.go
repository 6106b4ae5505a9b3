package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange reports a value that does not fit in a float64.
var ErrOutOfRange = errors.New("value out of range")

// Deltas converts a sequence of price levels into consecutive differences:
// out[i] = prices[i+1] - prices[i]. Fewer than two prices yield an empty slice.
//
// The subtraction is carried out in decimal so that [100.0, 102.5, 99.8]
// becomes exactly [2.5, -2.7] rather than accumulating binary rounding noise.
// A difference that overflows float64 is reported as ErrOutOfRange.
func Deltas(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return []float64{}, nil
	}
	out := make([]float64, 0, len(prices)-1)
	prev := decimal.NewFromFloat(prices[0])
	for i, p := range prices[1:] {
		cur := decimal.NewFromFloat(p)
		d, _ := cur.Sub(prev).Float64()
		if math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: change between prices %d and %d", ErrOutOfRange, i, i+1)
		}
		out = append(out, d)
		prev = cur
	}
	return out, nil
}
