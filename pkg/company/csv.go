package company

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Input column names, as written by the registry extraction stage.
const (
	ColName      = "company_name"
	ColLegalForm = "legal_form"
	ColTaxCode   = "tax_code"
	ColVAT       = "vat_number"
	ColPEC       = "pec_email"
)

// ReadCSV reads company records from a CSV stream with a header row.
// Only company_name is required; other columns are optional.
// Rows with an empty name are skipped.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols[ColName]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColName)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec := Record{
			Name:      field(row, ColName),
			LegalForm: field(row, ColLegalForm),
			TaxCode:   field(row, ColTaxCode),
			VATNumber: field(row, ColVAT),
			PEC:       field(row, ColPEC),
		}
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
