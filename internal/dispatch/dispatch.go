// Package dispatch routes protocol actions to analyses and result-log
// operations and wraps every outcome in a dto.Envelope.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/dto"
	"github.com/guttosm/profitpulse/internal/domain/models"
	"github.com/guttosm/profitpulse/internal/logger"
	"github.com/guttosm/profitpulse/internal/service"
)

// ClearedMessage is the payload of a successful results.clear.
const ClearedMessage = "All results cleared"

// ErrInvalidBody wraps every body decoding or validation failure.
var ErrInvalidBody = errors.New("invalid request body")

// Handler is anything that can turn an (action, body) pair into an envelope.
type Handler interface {
	Dispatch(ctx context.Context, action string, body json.RawMessage) dto.Envelope
}

// Dispatcher is the single routing step of the protocol.
type Dispatcher struct {
	svc      service.AnalysisService
	validate *validator.Validate
}

func New(svc service.AnalysisService) *Dispatcher {
	return &Dispatcher{svc: svc, validate: validator.New()}
}

// Dispatch executes action. It never panics on bad input and never returns
// a nil-status envelope. Unknown actions have no side effects.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, body json.RawMessage) dto.Envelope {
	switch action {
	case dto.ActionMaxProfit:
		return d.analyze(ctx, models.MaxProfit, analysis.MaxSum{}, body)
	case dto.ActionMaxLoss:
		return d.analyze(ctx, models.MaxLoss, analysis.Loss{}, body)
	case dto.ActionZeroReturn:
		return d.analyze(ctx, models.ZeroReturn, analysis.ZeroSum{}, body)
	case dto.ActionResultsList:
		return d.list(ctx)
	case dto.ActionResultsClear:
		return d.clear(ctx)
	default:
		log := logger.With("dispatch")
		log.Debug().Str("action", action).Msg("unknown action")
		return dto.Failure("Unknown action: " + action)
	}
}

func (d *Dispatcher) analyze(ctx context.Context, t models.AnalysisType, a analysis.Analyzer, raw json.RawMessage) dto.Envelope {
	req, err := d.decode(t, raw)
	if err != nil {
		return ProcessingError(err)
	}
	res, err := d.svc.Analyze(ctx, req, a)
	if err != nil {
		return ProcessingError(err)
	}
	return dto.Success(res)
}

func (d *Dispatcher) list(ctx context.Context) dto.Envelope {
	lines, err := d.svc.ListResults(ctx)
	if err != nil {
		return ServerError(err)
	}
	return dto.Success(lines)
}

func (d *Dispatcher) clear(ctx context.Context) dto.Envelope {
	if err := d.svc.ClearResults(ctx); err != nil {
		return ServerError(err)
	}
	return dto.Success(ClearedMessage)
}

// decode turns a raw analyze body into a normalized request.
func (d *Dispatcher) decode(t models.AnalysisType, raw json.RawMessage) (*models.AnalysisRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("%w: missing body", ErrInvalidBody)
	}

	var body dto.AnalyzeBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := d.validate.Struct(body); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBody, describeValidation(err))
	}

	req, err := models.NewAnalysisRequest(t, models.DataMode(body.DataMode), body.Values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return req, nil
}

// ProcessingError is the envelope for input that could not be decoded.
func ProcessingError(err error) dto.Envelope {
	return dto.Failure("Error processing request: " + err.Error())
}

// ServerError is the envelope for unexpected failures.
func ServerError(err error) dto.Envelope {
	return dto.Failure("Server error: " + err.Error())
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required", "min":
			parts = append(parts, fmt.Sprintf("%s must not be empty", lowerFirst(field)))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", lowerFirst(field), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed on %s", lowerFirst(field), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
