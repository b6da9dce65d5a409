package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
)

// Header is the websites CSV column layout.
var Header = []string{
	company.ColName,
	company.ColLegalForm,
	company.ColTaxCode,
	"official_website",
	"confidence_score",
	"validation_status",
	"high_confidence",
	"page_title",
	"candidates_checked",
}

// CSV appends results to a CSV file, writing the header when the file is new.
type CSV struct {
	f  *os.File
	w  *csv.Writer
	mu sync.Mutex
}

// OpenCSV opens path for appending.
func OpenCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close() //nolint:errcheck // already returning an error
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	c := &CSV{f: f, w: csv.NewWriter(f)}
	if st.Size() == 0 {
		if err := c.flush(Header); err != nil {
			_ = f.Close() //nolint:errcheck // already returning an error
			return nil, err
		}
	}
	return c, nil
}

// Write implements Sink.
func (c *CSV) Write(_ context.Context, res company.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return ErrClosed
	}
	return c.flush([]string{
		res.Company.Name,
		res.Company.LegalForm,
		res.Company.TaxCode,
		res.URL,
		strconv.Itoa(res.ConfidenceScore),
		string(res.Status),
		strconv.FormatBool(res.HighConfidence),
		res.PageTitle,
		strconv.Itoa(res.CandidatesChecked),
	})
}

func (c *CSV) flush(row []string) error {
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Close implements Sink.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// CompletedKeys reads an existing websites CSV and returns the record keys
// already decided (see company.Record.Key). A missing file yields an empty set.
func CompletedKeys(path string) (map[string]bool, error) {
	done := make(map[string]bool)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return done, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return done, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	nameCol, ok := cols[company.ColName]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", path, company.ErrMissingColumn, company.ColName)
	}
	taxCol, hasTax := cols[company.ColTaxCode]

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return done, nil
		}
		if err != nil {
			// A torn last line from an interrupted run is not fatal.
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rec := company.Record{}
		if nameCol < len(row) {
			rec.Name = row[nameCol]
		}
		if hasTax && taxCol < len(row) {
			rec.TaxCode = row[taxCol]
		}
		if k := rec.Key(); k != "" {
			done[k] = true
		}
	}
}
