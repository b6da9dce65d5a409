// Package company defines the company record evaluated by the website finder and the
// decision record it produces.
package company

import (
	"errors"
	"strings"
)

// ErrMissingColumn is returned when the input lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Status is the validation tier of a website decision.
type Status string

// Status values.
const (
	StatusNotFound      Status = "not_found"
	StatusRejected      Status = "rejected"
	StatusLowConfidence Status = "low_confidence"
	StatusValidated     Status = "validated"
)

// Record is the identity of one company evaluation.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Record struct {
	Name      string `json:"company_name"`
	LegalForm string `json:"legal_form,omitempty"`
	TaxCode   string `json:"tax_code,omitempty"`   // Codice Fiscale
	VATNumber string `json:"vat_number,omitempty"` // Partita IVA, optional
	PEC       string `json:"pec_email,omitempty"`  // certified email, optional
}

// Key identifies the record in output files. The tax code is the natural key;
// records without one fall back to the lowercased name.
func (r Record) Key() string {
	if tc := strings.ToUpper(strings.TrimSpace(r.TaxCode)); tc != "" {
		return tc
	}
	return strings.ToLower(strings.TrimSpace(r.Name))
}

// PECDomain returns the domain part of the certified email, or "" when absent.
func (r Record) PECDomain() string {
	_, domain, ok := strings.Cut(strings.TrimSpace(r.PEC), "@")
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(domain))
}

// Result is the single output record for one company.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Result struct {
	Company Record `json:"company"`

	URL               string `json:"official_website"` // empty when nothing was found
	ConfidenceScore   int    `json:"confidence_score"`
	Status            Status `json:"validation_status"`
	HighConfidence    bool   `json:"high_confidence,omitempty"`
	PageTitle         string `json:"page_title,omitempty"`
	CandidatesChecked int    `json:"candidates_checked"`
}

// NotFound builds the result emitted when no candidate survives.
func NotFound(rec Record, checked int) Result {
	return Result{
		Company:           rec,
		Status:            StatusNotFound,
		CandidatesChecked: checked,
	}
}
