// Package store persists extraction runs in SQLite.
//
// The consuming product keeps one row per document run plus one row
// per extraction record, so reference previews can be re-displayed
// without re-running the engine. The cgo-free modernc.org/sqlite
// driver keeps the module portable.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/docview/citelens/model"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("store: run not found")

// Store wraps a SQLite database holding extraction runs.
type Store struct {
	db *sql.DB
}

// Run is one persisted document run.
type Run struct {
	ID        int64                   `json:"id"`
	Document  string                  `json:"document"`
	CreatedAt time.Time               `json:"created_at"`
	Summary   model.ExtractionSummary `json:"summary"`
}

// Open opens or creates the extraction database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document TEXT NOT NULL,
			created_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			mean_confidence REAL NOT NULL,
			high_confidence INTEGER NOT NULL,
			low_confidence INTEGER NOT NULL,
			by_method_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS extractions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			citation_id TEXT NOT NULL,
			source_page INTEGER NOT NULL,
			target_page INTEGER NOT NULL,
			x_position REAL NOT NULL,
			y_position REAL NOT NULL,
			reference_text TEXT NOT NULL,
			method TEXT NOT NULL,
			confidence REAL NOT NULL,
			lines_used INTEGER NOT NULL,
			spans_pages INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_extractions_run
			ON extractions(run_id);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun persists a record set with its summary and returns the new
// run's ID.
func (s *Store) SaveRun(document string, records []model.ExtractionRecord, summary model.ExtractionSummary) (int64, error) {
	byMethod, err := json.Marshal(summary.ByMethod)
	if err != nil {
		return 0, fmt.Errorf("encoding method counts: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (document, created_at, total, mean_confidence,
			high_confidence, low_confidence, by_method_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		document,
		time.Now().UTC().Format(time.RFC3339Nano),
		summary.Total,
		summary.MeanConfidence,
		summary.HighConfidence,
		summary.LowConfidence,
		string(byMethod),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO extractions (run_id, citation_id, source_page,
			target_page, x_position, y_position, reference_text,
			method, confidence, lines_used, spans_pages, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(
			runID,
			rec.CitationID,
			rec.SourcePage,
			rec.TargetPage,
			rec.XPosition,
			rec.YPosition,
			rec.ReferenceText,
			string(rec.Method),
			rec.Confidence,
			rec.LinesUsed,
			boolToInt(rec.SpansPages),
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting extraction %q: %w", rec.CitationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// GetRun loads a persisted run by ID.
func (s *Store) GetRun(runID int64) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, document, created_at, total, mean_confidence,
			high_confidence, low_confidence, by_method_json
		FROM runs WHERE id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %d: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, document, created_at, total, mean_confidence,
			high_confidence, low_confidence, by_method_json
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListExtractions returns a run's extraction records in insertion
// order.
func (s *Store) ListExtractions(runID int64) ([]model.ExtractionRecord, error) {
	rows, err := s.db.Query(`
		SELECT citation_id, source_page, target_page, x_position,
			y_position, reference_text, method, confidence,
			lines_used, spans_pages, timestamp
		FROM extractions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	defer rows.Close()

	var records []model.ExtractionRecord
	for rows.Next() {
		var (
			rec        model.ExtractionRecord
			method     string
			spansPages int
			timestamp  string
		)
		err := rows.Scan(
			&rec.CitationID,
			&rec.SourcePage,
			&rec.TargetPage,
			&rec.XPosition,
			&rec.YPosition,
			&rec.ReferenceText,
			&method,
			&rec.Confidence,
			&rec.LinesUsed,
			&spansPages,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		rec.Method = model.Method(method)
		rec.SpansPages = spansPages != 0
		if ts, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			rec.Timestamp = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one runs row.
func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		createdAt string
		byMethod  string
	)
	err := row.Scan(
		&run.ID,
		&run.Document,
		&createdAt,
		&run.Summary.Total,
		&run.Summary.MeanConfidence,
		&run.Summary.HighConfidence,
		&run.Summary.LowConfidence,
		&byMethod,
	)
	if err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = ts
	}
	run.Summary.ByMethod = make(map[model.Method]int)
	if err := json.Unmarshal([]byte(byMethod), &run.Summary.ByMethod); err != nil {
		return nil, fmt.Errorf("decoding method counts: %w", err)
	}
	return &run, nil
}

// boolToInt converts a bool to its SQLite integer form.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
