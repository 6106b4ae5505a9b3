package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// expectedHeaders is the exact header a price file must start with.
var expectedHeaders = []string{"Date", "Close"}

const dateLayout = "2006-01-02"

// parsePriceFile reads a ';'-separated closing-price series.
//
// It fails on:
//   - a header that does not match expectedHeaders exactly
//   - rows with the wrong column count, an unparsable date or price
//   - dates that are not strictly increasing
//
// Prices may use ',' or '.' as decimal separator. Blank lines are skipped.
func parsePriceFile(ctx context.Context, path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, expectedHeaders[i], h)
		}
	}

	var (
		prices []float64
		last   time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read: %w", err)
		}
		line, _ := r.FieldPos(0)

		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", line, len(expectedHeaders), len(rec))
		}

		day, err := time.Parse(dateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid Date: %v", line, err)
		}
		if !last.IsZero() && !day.After(last) {
			return nil, fmt.Errorf("line %d: date %s is not after %s", line, day.Format(dateLayout), last.Format(dateLayout))
		}
		last = day

		price, err := parsePrice(rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid Close: %v", line, err)
		}
		prices = append(prices, price)
	}

	return prices, nil
}

// parsePrice accepts "10,50" as well as "10.50".
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, errors.New("empty value")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative price %s", d)
	}
	return d.InexactFloat64(), nil
}
