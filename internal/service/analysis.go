package service

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"
	"github.com/guttosm/profitpulse/internal/logger"
	"github.com/guttosm/profitpulse/internal/metrics"
	"github.com/guttosm/profitpulse/internal/storage"
)

// AnalysisService runs analyzers and keeps the result log.
type AnalysisService interface {
	// Analyze runs a over req.Values and appends the outcome to the store.
	// Persistence is best-effort: a failing store is logged and counted, and
	// the computed result is still returned. A result whose total overflowed
	// is not persisted and comes back as analysis.ErrOutOfRange.
	Analyze(ctx context.Context, req *models.AnalysisRequest, a analysis.Analyzer) (analysis.Result, error)
	ListResults(ctx context.Context) ([]string, error)
	ClearResults(ctx context.Context) error
	// Ready reports whether the backing store is reachable.
	Ready(ctx context.Context) error
}

type analysisService struct {
	store   storage.ResultStore
	metrics *metrics.Metrics
}

func NewAnalysisService(store storage.ResultStore, m *metrics.Metrics) AnalysisService {
	if m == nil {
		m = metrics.New()
	}
	return &analysisService{store: store, metrics: m}
}

func (s *analysisService) Analyze(ctx context.Context, req *models.AnalysisRequest, a analysis.Analyzer) (analysis.Result, error) {
	start := time.Now()
	res := a.Analyze(req.Values)
	s.metrics.AnalysisDuration.WithLabelValues(string(req.Type)).Observe(time.Since(start).Seconds())

	log := logger.With("service")
	if !res.Finite() {
		s.metrics.AnalysesTotal.WithLabelValues(string(req.Type), "rejected").Inc()
		log.Warn().
			Str("request_id", req.ID).
			Str("analyzer", a.Name()).
			Msg("analysis total overflowed")
		return analysis.Result{}, fmt.Errorf("%w: total of range %d..%d", analysis.ErrOutOfRange, res.StartIndex, res.EndIndex)
	}

	if err := s.store.Append(ctx, req, res); err != nil {
		s.metrics.PersistenceFailures.Inc()
		s.metrics.AnalysesTotal.WithLabelValues(string(req.Type), "unpersisted").Inc()
		log.Error().Err(err).
			Str("request_id", req.ID).
			Str("analyzer", a.Name()).
			Msg("failed to persist analysis result")
		return res, nil
	}

	s.metrics.AnalysesTotal.WithLabelValues(string(req.Type), "ok").Inc()
	log.Debug().
		Str("request_id", req.ID).
		Str("analyzer", a.Name()).
		Int("values", len(req.Values)).
		Stringer("result", res).
		Msg("analysis completed")
	return res, nil
}

func (s *analysisService) ListResults(ctx context.Context) ([]string, error) {
	return s.store.ListAll(ctx)
}

func (s *analysisService) ClearResults(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *analysisService) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
