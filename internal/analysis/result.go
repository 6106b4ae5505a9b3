package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Result describes a contiguous range [StartIndex, EndIndex] of a sequence
// together with the aggregate computed over it.
//
// The zero-information result is the sentinel (-1, -1, 0), returned when there
// is no data to analyze (or, for zero-sum scans, no qualifying range).
type Result struct {
	StartIndex int     `json:"startIndex" example:"1"`
	EndIndex   int     `json:"endIndex" example:"3"`
	Total      float64 `json:"total" example:"6"`
}

// NoData returns the canonical "no data" sentinel.
func NoData() Result {
	return Result{StartIndex: -1, EndIndex: -1, Total: 0}
}

// IsNoData reports whether r is the sentinel.
func (r Result) IsNoData() bool {
	return r.StartIndex == -1
}

// Len returns the number of elements covered by r (0 for the sentinel).
func (r Result) Len() int {
	if r.IsNoData() {
		return 0
	}
	return r.EndIndex - r.StartIndex + 1
}

// Finite reports whether Total is a finite number. Sums of large inputs can
// overflow to ±Inf, which can be neither persisted nor encoded as JSON.
func (r Result) Finite() bool {
	return !math.IsInf(r.Total, 0) && !math.IsNaN(r.Total)
}

// String renders the result the way it is written to the results log.
func (r Result) String() string {
	return fmt.Sprintf("Result[startIndex=%d, endIndex=%d, total=%s]", r.StartIndex, r.EndIndex, FormatNumber(r.Total))
}

// FormatNumber prints v with the shortest exact representation, always keeping
// a fractional part (6 -> "6.0", 2.5 -> "2.5").
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// FormatValues renders a sequence as "[a, b, c]".
func FormatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatNumber(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
