package models

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/guttosm/profitpulse/internal/analysis"
)

// AnalysisType names the statistic requested for a sequence.
type AnalysisType string

const (
	MaxProfit  AnalysisType = "MAX_PROFIT"
	MaxLoss    AnalysisType = "MAX_LOSS"
	ZeroReturn AnalysisType = "ZERO_RETURN"
)

// DataMode tells how the raw input values must be interpreted.
type DataMode string

const (
	// DailyChanges means the values are already signed daily deltas.
	DailyChanges DataMode = "DAILY_CHANGES"
	// ClosingPrices means the values are price levels that must be differenced first.
	ClosingPrices DataMode = "CLOSING_PRICES"
)

var (
	ErrEmptyValues     = errors.New("values must contain at least one number")
	ErrNotEnoughPrices = errors.New("closing prices need at least two values")
	ErrUnknownDataMode = errors.New("unknown data mode")
	ErrUnknownAnalysis = errors.New("unknown analysis type")
)

// newID is an indirection for tests; defaults to a random UUID v4.
var newID = uuid.NewString

// AnalysisRequest is one addressable unit of work.
//
// Values always holds the delta sequence actually analyzed. OriginalPrices is
// set only when DataMode is ClosingPrices and keeps the levels the deltas were
// derived from (they are written to the results log).
//
// swagger:model AnalysisRequest
type AnalysisRequest struct {
	ID             string       `json:"id"`
	Values         []float64    `json:"values"`
	Type           AnalysisType `json:"type"`
	DataMode       DataMode     `json:"dataMode"`
	OriginalPrices []float64    `json:"originalPrices,omitempty"`
}

// NewAnalysisRequest normalizes raw input into a request with a fresh ID.
//
// Behavior:
//   - An empty mode defaults to DailyChanges.
//   - In ClosingPrices mode, raw is copied into OriginalPrices and Values
//     becomes analysis.Deltas(raw).
//   - Empty input (or fewer than two prices) is rejected.
//   - Price changes that overflow float64 are rejected with
//     analysis.ErrOutOfRange.
func NewAnalysisRequest(t AnalysisType, mode DataMode, raw []float64) (*AnalysisRequest, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalysis, t)
	}
	if mode == "" {
		mode = DailyChanges
	}

	req := &AnalysisRequest{ID: newID(), Type: t, DataMode: mode}

	switch mode {
	case DailyChanges:
		if len(raw) == 0 {
			return nil, ErrEmptyValues
		}
		req.Values = slices.Clone(raw)
	case ClosingPrices:
		if len(raw) == 0 {
			return nil, ErrEmptyValues
		}
		if len(raw) < 2 {
			return nil, ErrNotEnoughPrices
		}
		deltas, err := analysis.Deltas(raw)
		if err != nil {
			return nil, err
		}
		req.OriginalPrices = slices.Clone(raw)
		req.Values = deltas
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataMode, mode)
	}
	return req, nil
}

// Valid reports whether t is one of the known analysis types.
func (t AnalysisType) Valid() bool {
	switch t {
	case MaxProfit, MaxLoss, ZeroReturn:
		return true
	}
	return false
}
