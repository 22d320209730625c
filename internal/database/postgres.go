package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nao1215/ttscrape/internal/model"
	"github.com/nao1215/ttscrape/internal/schema"
)

// PostgresSink writes datasets into the warehouse tables.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// SinkOption configures a PostgresSink.
type SinkOption func(*PostgresSink)

// WithSinkLogger sets the logger.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(s *PostgresSink) {
		s.logger = logger
	}
}

// OpenPostgres connects to dsn and checks the connection.
func OpenPostgres(ctx context.Context, dsn string, opts ...SinkOption) (*PostgresSink, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresSink{pool: pool, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}

// Migrate creates any missing warehouse tables.
func (s *PostgresSink) Migrate(ctx context.Context) error {
	tables, err := schema.All()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if _, err := s.pool.Exec(ctx, t.Up); err != nil {
			return fmt.Errorf("migrate %s: %w", t.Name, err)
		}
	}
	return nil
}

// Drop removes the warehouse tables, dependents first.
func (s *PostgresSink) Drop(ctx context.Context) error {
	tables, err := schema.All()
	if err != nil {
		return err
	}
	slices.Reverse(tables)
	for _, t := range tables {
		if _, err := s.pool.Exec(ctx, t.Down); err != nil {
			return fmt.Errorf("drop %s: %w", t.Name, err)
		}
	}
	return nil
}

// Replace swaps the contents of every warehouse table for ds in a single
// transaction.
func (s *PostgresSink) Replace(ctx context.Context, ds *model.Dataset) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, "TRUNCATE times, classes, courses"); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	for _, name := range schema.Order {
		t, err := schema.Get(name)
		if err != nil {
			return err
		}
		rows := tableRows(name, ds)
		n, err := tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy %s: %w", t.Name, err)
		}
		s.logger.Debug("table loaded", "table", t.Name, "rows", n)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	courses, classes, times := ds.Counts()
	s.logger.Info("warehouse replaced",
		"courses", courses,
		"classes", classes,
		"times", times,
		"elapsed", time.Since(start),
	)
	return nil
}

// Count returns the number of rows in table.
func (s *PostgresSink) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&n)
	return n, err
}

// tableRows returns ds's rows for the named table, in schema column order.
func tableRows(name string, ds *model.Dataset) [][]any {
	var rows [][]any
	switch name {
	case schema.Courses:
		rows = make([][]any, 0, len(ds.Courses))
		for _, r := range ds.Courses {
			rows = append(rows, []any{
				r.CourseID, r.CourseCode, r.CourseName, r.UOC, r.Faculty,
				r.School, r.Campus, r.Career, r.Terms, r.Modes,
			})
		}
	case schema.Classes:
		rows = make([][]any, 0, len(ds.Classes))
		for _, r := range ds.Classes {
			rows = append(rows, []any{
				r.ClassID, r.Career, r.CourseID, r.Section, r.Term, r.Activity,
				r.Year, r.Status, r.CourseEnrolment, r.OfferingPeriod,
				r.MeetingDates, r.CensusDate, r.Consent, r.Mode, r.ClassNotes,
			})
		}
	case schema.Times:
		rows = make([][]any, 0, len(ds.Times))
		for _, r := range ds.Times {
			rows = append(rows, []any{
				r.ID, r.ClassID, r.Career, r.Day, r.Instructor, r.Location,
				r.Time, r.Weeks,
			})
		}
	}
	return rows
}
