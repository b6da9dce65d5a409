package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
)

//go:embed schema.sql
var schema string

const insertResult = `INSERT INTO website_results (
	run_id, company_key, company_name, legal_form, tax_code, official_website,
	confidence_score, validation_status, high_confidence, page_title, candidates_checked, written_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLite records results in a database table, tagged with a run id.
type SQLite struct {
	db    *sql.DB
	now   func() time.Time
	runID string
	mu    sync.Mutex
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One connection keeps ":memory:" databases consistent across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close() //nolint:errcheck // already returning an error
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db, runID: uuid.NewString(), now: time.Now}, nil
}

// RunID identifies the rows written by this process.
func (s *SQLite) RunID() string { return s.runID }

// Write implements Sink.
func (s *SQLite) Write(ctx context.Context, res company.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, insertResult,
		s.runID, res.Company.Key(), res.Company.Name, res.Company.LegalForm, res.Company.TaxCode, res.URL,
		res.ConfidenceScore, string(res.Status), res.HighConfidence, res.PageTitle, res.CandidatesChecked,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert result for %s: %w", res.Company.Name, err)
	}
	return nil
}

// Close implements Sink.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
