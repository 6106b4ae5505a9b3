package dto

import "encoding/json"

// Actions understood by the dispatcher. The set is closed.
const (
	ActionMaxProfit    = "analyze.maxProfit"
	ActionMaxLoss      = "analyze.maxLoss"
	ActionZeroReturn   = "analyze.zeroReturn"
	ActionResultsClear = "results.clear"
	ActionResultsList  = "results.list"
)

// Request is one inbound frame: {"headers": {"action": "..."}, "body": {...}}.
// Body is kept raw so each action decodes it into its own shape.
type Request struct {
	Headers RequestHeaders  `json:"headers"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// RequestHeaders carries routing metadata.
type RequestHeaders struct {
	Action string `json:"action"`
}

// AnalyzeBody is the body of the three analyze.* actions.
//
// swagger:model AnalyzeBody
type AnalyzeBody struct {
	Values   []float64 `json:"values" validate:"required,min=1" example:"100.0,102.5,99.8"`
	DataMode string    `json:"dataMode,omitempty" validate:"omitempty,oneof=DAILY_CHANGES CLOSING_PRICES" example:"CLOSING_PRICES"`
}
