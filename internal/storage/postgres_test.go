package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	return NewPostgresStore(db), mock, func() { _ = db.Close() }
}

var selectColumns = []string{
	"request_id", "analysis_type", "data_mode", "input_prices",
	"analyzed_values", "start_index", "end_index", "total",
}

func TestPostgresStore_Append(t *testing.T) {
	cases := []struct {
		name       string
		closing    bool
		execErr    error
		wantErr    bool
		wantPrices bool
	}{
		{name: "closing prices", closing: true, wantPrices: true},
		{name: "daily changes", closing: false},
		{name: "insert fails", closing: false, execErr: errors.New("boom"), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock, done := newMockStore(t)
			defer done()

			req, res := dailyChangesRequest(t)
			if tc.closing {
				req, res = closingPricesRequest(t)
			}

			var prices interface{} = nil
			if tc.wantPrices {
				prices = sqlmock.AnyArg()
			}
			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_results")).
				WithArgs(req.ID, string(req.Type), string(req.DataMode), prices, sqlmock.AnyArg(),
					res.StartIndex, res.EndIndex, res.Total)
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err := store.Append(context.Background(), req, res)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tc.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestPostgresStore_ListAll(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	rows := sqlmock.NewRows(selectColumns).
		AddRow("a", "MAX_PROFIT", "CLOSING_PRICES", "{100,102.5,99.8}", "{2.5,-2.7}", 0, 0, 2.5).
		AddRow("b", "MAX_LOSS", "DAILY_CHANGES", nil, "{1,-3,-2,4}", 1, 2, -5.0)
	mock.ExpectQuery(`SELECT .* FROM analysis_results\s+ORDER BY id`).WillReturnRows(rows)

	lines, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(lines) != 3+7+6 {
		t.Fatalf("unexpected line count %d: %q", len(lines), lines)
	}
	if lines[6] != "User Input: [100.0, 102.5, 99.8]" {
		t.Fatalf("unexpected user input line %q", lines[6])
	}
	if lines[len(lines)-2] != "Result: Result[startIndex=1, endIndex=2, total=-5.0]" {
		t.Fatalf("unexpected result line %q", lines[len(lines)-2])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_ListAllEmpty(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM analysis_results`).WillReturnRows(sqlmock.NewRows(selectColumns))
	lines, err := store.ListAll(context.Background())
	if err != nil || lines == nil || len(lines) != 0 {
		t.Fatalf("want empty, got %#v err=%v", lines, err)
	}
}

func TestPostgresStore_ListAllQueryError(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM analysis_results`).WillReturnError(errors.New("down"))
	if _, err := store.ListAll(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresStore_ClearAndPing(t *testing.T) {
	store, mock, done := newMockStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analysis_results")).WillReturnResult(sqlmock.NewResult(0, 4))
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM analysis_results")).WillReturnError(errors.New("locked"))
	if err := store.Clear(context.Background()); err == nil {
		t.Fatalf("expected clear error")
	}

	mock.ExpectPing()
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
