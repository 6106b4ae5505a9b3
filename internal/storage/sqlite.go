package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/guttosm/profitpulse/internal/analysis"
	"github.com/guttosm/profitpulse/internal/domain/models"

	_ "modernc.org/sqlite" // pure-Go SQLite driver for database/sql
)

// SQLiteStore persists results in an embedded SQLite database. Value
// sequences are stored as JSON arrays in TEXT columns.
type SQLiteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// sqliteOpener is an indirection for unit testing; defaults to sql.Open.
var sqliteOpener = sql.Open

// OpenSQLite opens (or creates) the database at path, applies pragmas and
// makes sure the schema exists.
func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sqliteOpener("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		log.Warn().Err(err).Msg("failed to set WAL mode")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		log.Warn().Err(err).Msg("failed to set busy timeout")
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL UNIQUE,
			analysis_type TEXT NOT NULL,
			data_mode TEXT NOT NULL,
			input_prices TEXT,
			analyzed_values TEXT NOT NULL,
			start_index INTEGER NOT NULL,
			end_index INTEGER NOT NULL,
			total REAL NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
		);`)
	if err != nil {
		return fmt.Errorf("create analysis_results: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, req *models.AnalysisRequest, res analysis.Result) error {
	values, err := json.Marshal(req.Values)
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	var prices sql.NullString
	if req.OriginalPrices != nil {
		b, err := json.Marshal(req.OriginalPrices)
		if err != nil {
			return fmt.Errorf("encode prices: %w", err)
		}
		prices = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_results
			(request_id, analysis_type, data_mode, input_prices, analyzed_values, start_index, end_index, total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, string(req.Type), string(req.DataMode), prices, string(values),
		res.StartIndex, res.EndIndex, res.Total,
	)
	if err != nil {
		return fmt.Errorf("insert analysis result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]string, error) {
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
			r         record
			typ, mode string
			prices    sql.NullString
			values    string
		)
		if err := rows.Scan(&r.RequestID, &typ, &mode, &prices, &values,
			&r.Result.StartIndex, &r.Result.EndIndex, &r.Result.Total); err != nil {
			return nil, fmt.Errorf("scan analysis result: %w", err)
		}
		r.Type, r.DataMode = models.AnalysisType(typ), models.DataMode(mode)
		if err := json.Unmarshal([]byte(values), &r.Values); err != nil {
			return nil, fmt.Errorf("decode values of %s: %w", r.RequestID, err)
		}
		if prices.Valid {
			if err := json.Unmarshal([]byte(prices.String), &r.OriginalPrices); err != nil {
				return nil, fmt.Errorf("decode prices of %s: %w", r.RequestID, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis results: %w", err)
	}
	return renderLog(records), nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis_results`); err != nil {
		return fmt.Errorf("clear analysis results: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
