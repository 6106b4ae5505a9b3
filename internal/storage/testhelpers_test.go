package storage

import (
	"testing"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"
)

func mustRequest(t *testing.T, typ models.AnalysisType, mode models.DataMode, raw []float64) *models.AnalysisRequest {
	t.Helper()
	req, err := models.NewAnalysisRequest(typ, mode, raw)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func closingPricesRequest(t *testing.T) (*models.AnalysisRequest, analysis.Result) {
	t.Helper()
	req := mustRequest(t, models.MaxProfit, models.ClosingPrices, []float64{100, 102.5, 99.8})
	return req, analysis.MaxSum{}.Analyze(req.Values)
}

func dailyChangesRequest(t *testing.T) (*models.AnalysisRequest, analysis.Result) {
	t.Helper()
	req := mustRequest(t, models.MaxLoss, models.DailyChanges, []float64{1, -3, -2, 4})
	return req, analysis.Loss{}.Analyze(req.Values)
}
