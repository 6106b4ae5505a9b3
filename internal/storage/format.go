package storage

import (
	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"
)

const (
	separator   = "----------------------------------------------------"
	bannerTitle = "Profit Analyzer - Calculates profit in stock trading"
)

// bannerLines precede the first record of a fresh log.
func bannerLines() []string {
	return []string{separator, bannerTitle, separator}
}

// record is the backend-neutral shape of one stored analysis.
type record struct {
	RequestID      string
	Type           models.AnalysisType
	DataMode       models.DataMode
	OriginalPrices []float64
	Values         []float64
	Result         analysis.Result
}

func newRecord(req *models.AnalysisRequest, res analysis.Result) record {
	return record{
		RequestID:      req.ID,
		Type:           req.Type,
		DataMode:       req.DataMode,
		OriginalPrices: req.OriginalPrices,
		Values:         req.Values,
		Result:         res,
	}
}

// lines renders one record block, trailing separator included.
func (r record) lines() []string {
	out := []string{
		"Request ID: " + r.RequestID,
		"Analysis Type: " + string(r.Type),
		"Data Mode: " + string(r.DataMode),
	}
	if r.DataMode == models.ClosingPrices && r.OriginalPrices != nil {
		out = append(out, "User Input: "+analysis.FormatValues(r.OriginalPrices))
	}
	return append(out,
		"Values Used for Analysis: "+analysis.FormatValues(r.Values),
		"Result: "+r.Result.String(),
		separator,
	)
}

// renderLog turns stored records into the same lines a FileStore would hold.
// An empty store renders as no lines at all (not even the banner).
func renderLog(records []record) []string {
	if len(records) == 0 {
		return []string{}
	}
	out := bannerLines()
	for _, r := range records {
		out = append(out, r.lines()...)
	}
	return out
}
