package storage

import (
	"context"
	"database/sql"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"
)

// PostgresStore persists results in the analysis_results table
// (see db/migrations). Value sequences are stored as DOUBLE PRECISION[].
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts one row. A single INSERT is atomic, so concurrent writers
// never observe partial records.
func (s *PostgresStore) Append(ctx context.Context, req *models.AnalysisRequest, res analysis.Result) error {
	var prices interface{}
	if req.OriginalPrices != nil {
		prices = pq.Array(req.OriginalPrices)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_results
			(request_id, analysis_type, data_mode, input_prices, analyzed_values, start_index, end_index, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, string(req.Type), string(req.DataMode), prices, pq.Array(req.Values),
		res.StartIndex, res.EndIndex, res.Total,
	)
	if err != nil {
		return fmt.Errorf("insert analysis result: %w", err)
	}
	return nil
}

// ListAll renders every row, oldest first, in the text log format.
func (s *PostgresStore) ListAll(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, analysis_type, data_mode, input_prices, analyzed_values, start_index, end_index, total
		FROM analysis_results
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query analysis results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []record
	for rows.Next() {
		var (
			r              record
			typ, mode      string
			prices, values pq.Float64Array
		)
		if err := rows.Scan(&r.RequestID, &typ, &mode, &prices, &values,
			&r.Result.StartIndex, &r.Result.EndIndex, &r.Result.Total); err != nil {
			return nil, fmt.Errorf("scan analysis result: %w", err)
		}
		r.Type, r.DataMode = models.AnalysisType(typ), models.DataMode(mode)
		r.OriginalPrices, r.Values = prices, values
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis results: %w", err)
	}
	return renderLog(records), nil
}

// Clear deletes every row.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_results`); err != nil {
		return fmt.Errorf("clear analysis results: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
