package analysis

// Analyzer computes a contiguous-range statistic over a sequence of deltas.
//
// Implementations are pure: they hold no state between calls and never mutate
// their input, so a single value may be shared by any number of goroutines.
type Analyzer interface {
	Analyze(values []float64) Result
	Name() string
}

var (
	_ Analyzer = MaxSum{}
	_ Analyzer = ZeroSum{}
	_ Analyzer = Loss{}
)
