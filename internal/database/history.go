package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ttscrape/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "ttscrape.db"

// HistoryDB records crawl runs in SQLite.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Run is the summary of one saved crawl.
type Run struct {
	ID        string
	Year      int
	Courses   int
	Classes   int
	Times     int
	Digest    string
	Changed   bool
	CreatedAt time.Time
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		year INTEGER NOT NULL,
		courses INTEGER NOT NULL,
		classes INTEGER NOT NULL,
		times INTEGER NOT NULL,
		digest TEXT NOT NULL,
		changed INTEGER NOT NULL,
		dataset_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_year ON runs(year);
	`
	_, err := h.db.ExecContext(context.Background(), ddl)
	return err
}

// Digest returns the hex SHA3-256 of the dataset's JSON encoding.
func Digest(ds *model.Dataset) (string, error) {
	raw, err := json.Marshal(ds)
	if err != nil {
		return "", fmt.Errorf("failed to encode dataset: %w", err)
	}
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// SaveRun stores ds as a new run for year. Changed is set when the digest
// differs from the previous run of the same year, or there was none.
func (h *HistoryDB) SaveRun(ctx context.Context, year int, ds *model.Dataset) (*Run, error) {
	raw, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset: %w", err)
	}
	sum := sha3.Sum256(raw)

	courses, classes, times := ds.Counts()
	run := &Run{
		ID:        uuid.NewString(),
		Year:      year,
		Courses:   courses,
		Classes:   classes,
		Times:     times,
		Digest:    hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}

	prev, err := h.LatestRun(ctx, year)
	if err != nil {
		return nil, err
	}
	run.Changed = prev == nil || prev.Digest != run.Digest

	const query = `
	INSERT INTO runs (id, year, courses, classes, times, digest, changed, dataset_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = h.db.ExecContext(ctx, query,
		run.ID,
		run.Year,
		run.Courses,
		run.Classes,
		run.Times,
		run.Digest,
		run.Changed,
		string(raw),
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

const runColumns = `id, year, courses, classes, times, digest, changed, created_at`

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LatestRun returns the newest run for year, or nil if there is none.
func (h *HistoryDB) LatestRun(ctx context.Context, year int) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE year = ? ORDER BY seq DESC LIMIT 1`

	run, err := scanRun(h.db.QueryRowContext(ctx, query, year))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun returns run id.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(h.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LoadDataset returns the dataset saved with run id.
func (h *HistoryDB) LoadDataset(ctx context.Context, id string) (*model.Dataset, error) {
	var raw string
	err := h.db.QueryRowContext(ctx, `SELECT dataset_json FROM runs WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	var ds model.Dataset
	if err := json.Unmarshal([]byte(raw), &ds); err != nil {
		return nil, fmt.Errorf("failed to parse run %s: %w", id, err)
	}
	return &ds, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run       Run
		createdAt string
	)
	err := s.Scan(
		&run.ID,
		&run.Year,
		&run.Courses,
		&run.Classes,
		&run.Times,
		&run.Digest,
		&run.Changed,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.CreatedAt = parseTimestamp(createdAt)
	return &run, nil
}

// timestampFormats lists the layouts created_at may come back in, most
// specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
