package models

import (
	"errors"
	"testing"

	"github.com/guttosm/profitpulse/internal/analysis"
)

func TestNewAnalysisRequest_TableDriven(t *testing.T) {
	old := newID
	newID = func() string { return "fixed-id" }
	t.Cleanup(func() { newID = old })

	cases := []struct {
		name       string
		typ        AnalysisType
		mode       DataMode
		raw        []float64
		wantValues []float64
		wantPrices []float64
		wantMode   DataMode
		wantErr    error
	}{
		{name: "default mode", typ: MaxProfit, raw: []float64{1, -2}, wantValues: []float64{1, -2}, wantMode: DailyChanges},
		{name: "closing prices", typ: MaxLoss, mode: ClosingPrices, raw: []float64{100.0, 102.5, 99.8},
			wantValues: []float64{2.5, -2.7}, wantPrices: []float64{100.0, 102.5, 99.8}, wantMode: ClosingPrices},
		{name: "empty values", typ: MaxProfit, mode: DailyChanges, raw: nil, wantErr: ErrEmptyValues},
		{name: "single price", typ: ZeroReturn, mode: ClosingPrices, raw: []float64{10}, wantErr: ErrNotEnoughPrices},
		{name: "price change overflows", typ: ZeroReturn, mode: ClosingPrices, raw: []float64{1.7e308, -1.7e308}, wantErr: analysis.ErrOutOfRange},
		{name: "unknown mode", typ: MaxProfit, mode: "WEEKLY", raw: []float64{1}, wantErr: ErrUnknownDataMode},
		{name: "unknown type", typ: "MAX_FUN", raw: []float64{1}, wantErr: ErrUnknownAnalysis},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewAnalysisRequest(tc.typ, tc.mode, tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) || req != nil {
					t.Fatalf("want err %v, got req=%+v err=%v", tc.wantErr, req, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if req.ID != "fixed-id" || req.Type != tc.typ || req.DataMode != tc.wantMode {
				t.Fatalf("unexpected request: %+v", req)
			}
			if !equal(req.Values, tc.wantValues) || !equal(req.OriginalPrices, tc.wantPrices) {
				t.Fatalf("values=%v prices=%v", req.Values, req.OriginalPrices)
			}
		})
	}
}

func TestNewAnalysisRequest_CopiesInput(t *testing.T) {
	raw := []float64{1, 2}
	req, err := NewAnalysisRequest(MaxProfit, DailyChanges, raw)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	raw[0] = 99
	if req.Values[0] != 1 {
		t.Fatalf("request shares caller slice")
	}
}

func TestNewAnalysisRequest_FreshIDs(t *testing.T) {
	a, _ := NewAnalysisRequest(MaxProfit, "", []float64{1})
	b, _ := NewAnalysisRequest(MaxProfit, "", []float64{1})
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
