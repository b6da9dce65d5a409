package company

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReadCSV(t *testing.T) {
	input := "company_name,legal_form,tax_code,pec_email\n" +
		"SIELTE,S.P.A.,00941910788,sielte@pec.sielte.it\n" +
		",SRL,123,\n" +
		"ACME,SRL,01234567890,\n"

	got, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	want := []Record{
		{Name: "SIELTE", LegalForm: "S.P.A.", TaxCode: "00941910788", PEC: "sielte@pec.sielte.it"},
		{Name: "ACME", LegalForm: "SRL", TaxCode: "01234567890"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadCSV mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_MissingName(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("tax_code\n123\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("ReadCSV error = %v, want ErrMissingColumn", err)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(strings.NewReader(""))
	if err != nil || got != nil {
		t.Errorf("ReadCSV(\"\") = %v, %v; want nil, nil", got, err)
	}
}

func TestRecordKey(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{"tax code", Record{Name: "Acme", TaxCode: " abc123 "}, "ABC123"},
		{"name fallback", Record{Name: " Acme SRL "}, "acme srl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPECDomain(t *testing.T) {
	tests := []struct {
		pec  string
		want string
	}{
		{"info@PEC.Sielte.it", "pec.sielte.it"},
		{"", ""},
		{"not-an-email", ""},
	}
	for _, tt := range tests {
		if got := (Record{PEC: tt.pec}).PECDomain(); got != tt.want {
			t.Errorf("PECDomain(%q) = %q, want %q", tt.pec, got, tt.want)
		}
	}
}
