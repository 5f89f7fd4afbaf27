package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// mockPool scripts Postgres responses per statement. Dispatch is on SQL
// substrings, which keeps each test honest about which statements run.
type mockPool struct {
	queryFn    func(sql string, args []any) (pgx.Rows, error)
	queryRowFn func(sql string, args []any) pgx.Row

	execSQL  []string
	execArgs [][]any
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn == nil {
		return &fakeRows{}, nil
	}
	return m.queryFn(sql, args)
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn == nil {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	return m.queryRowFn(sql, args)
}

func (m *mockPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execSQL = append(m.execSQL, sql)
	m.execArgs = append(m.execArgs, args)
	return pgconn.CommandTag{}, nil
}

// fakeRows plays back canned rows. The embedded interface panics on
// anything a test did not mean to exercise.
type fakeRows struct {
	pgx.Rows
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan %d destinations, row has %d values", len(dest), len(row))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan %d destinations, row has %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		if err := assign(d, r.vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func assign(dest, val any) error {
	switch d := dest.(type) {
	case *int64:
		*d = val.(int64)
	case *int:
		*d = val.(int)
	case *string:
		*d = val.(string)
	case *bool:
		*d = val.(bool)
	case *float64:
		*d = val.(float64)
	case *time.Time:
		*d = val.(time.Time)
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}
