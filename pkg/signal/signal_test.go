package signal

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
)

func mustCompile(t *testing.T) *Set {
	t.Helper()
	s, err := Compile(config.Default().Signals)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

func TestVariations(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"SIELTE", []string{"sielte"}},
		{"Sielte S.p.A.", []string{"sielte spa", "sielte"}},
		{"Rossi & Figli Costruzioni S.R.L.", []string{
			"rossi figli costruzioni srl", "rossi figli costruzioni", "rossi", "rossi figli",
		}},
		{"A.B. SRL", []string{"ab srl"}},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Variations(tt.name)); diff != "" {
				t.Errorf("Variations(%q) mismatch (-want +got):\n%s", tt.name, diff)
			}
		})
	}
}

func TestName(t *testing.T) {
	s := mustCompile(t)
	rec := company.Record{Name: "Rossi Figli Costruzioni S.R.L."}

	got := s.Name(rec, "© Rossi Figli Costruzioni s.r.l.", "Rossi Figli Costruzioni, una storia di famiglia. Rossi.")
	want := []Signal{
		{Kind: KindName, Zone: ZoneFooter, Points: 20, Detail: "rossi figli costruzioni srl"},
		{Kind: KindName, Zone: ZoneContent, Points: 15, Detail: "rossi figli costruzioni"},
		{Kind: KindName, Zone: ZoneContent, Points: 15, Detail: "rossi"},
		{Kind: KindName, Zone: ZoneContent, Points: 15, Detail: "rossi figli"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Name() mismatch (-want +got):\n%s", diff)
	}
}

func TestNameWordBoundary(t *testing.T) {
	s := mustCompile(t)
	if got := s.Name(company.Record{Name: "Sielte"}, "", "sieltex srl e altri"); got != nil {
		t.Errorf("Name() matched inside a word: %+v", got)
	}
}

func TestTaxID(t *testing.T) {
	s := mustCompile(t)
	rec := company.Record{TaxCode: "00941910788"}
	tests := []struct {
		name   string
		footer string
		body   string
		want   []Signal
	}{
		{
			name:   "footer and body",
			footer: "C.F. 00941910788",
			body:   "... C.F. 00941910788",
			want: []Signal{
				{Kind: KindTaxID, Zone: ZoneFooter, Points: 30, Detail: "00941910788"},
				{Kind: KindTaxID, Zone: ZoneContent, Points: 25, Detail: "00941910788"},
			},
		},
		{
			name: "separators tolerated",
			body: "codice fiscale 009 419 107-88",
			want: []Signal{{Kind: KindTaxID, Zone: ZoneContent, Points: 25, Detail: "00941910788"}},
		},
		{
			name:   "IT prefix",
			footer: "Sielte S.p.A. P.IVA IT00941910788",
			body:   "Sielte S.p.A. P.IVA IT 00941910788",
			want: []Signal{
				{Kind: KindTaxID, Zone: ZoneFooter, Points: 30, Detail: "00941910788"},
				{Kind: KindTaxID, Zone: ZoneContent, Points: 25, Detail: "00941910788"},
			},
		},
		{
			name: "other letters glued on",
			body: "codice XX00941910788",
		},
		{
			name: "inside a longer number",
			body: "ordine 1009419107885",
		},
		{
			name: "absent",
			body: "nessun codice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, s.TaxID(rec, tt.footer, tt.body)); diff != "" {
				t.Errorf("TaxID() mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if got := s.TaxID(company.Record{}, "00941910788", "00941910788"); got != nil {
		t.Errorf("TaxID() without a tax code = %+v", got)
	}
}

func TestTaxIDAlphanumeric(t *testing.T) {
	s := mustCompile(t)
	rec := company.Record{TaxCode: "RSSMRA80A01H501U"}
	got := s.TaxID(rec, "", "cf: rssmra80a01h501u")
	if len(got) != 1 || got[0].Zone != ZoneContent {
		t.Errorf("TaxID() = %+v, want one case-insensitive content hit", got)
	}
}

func TestVAT(t *testing.T) {
	s := mustCompile(t)
	tests := []struct {
		name   string
		rec    company.Record
		footer string
		want   string
	}{
		{"partita iva label", company.Record{}, "Partita IVA: 01234567890", "label"},
		{"p.iva label", company.Record{}, "P.IVA 01234567890", "label"},
		{"vat number label", company.Record{}, "VAT number IT01234567890", "label"},
		{"it prefix", company.Record{}, "Sede legale Roma - IT01234567890", "it_prefix"},
		{"known vat", company.Record{VATNumber: "IT01234567890"}, "Dati societari 012 3456 7890", "known_vat"},
		{"ten digits only", company.Record{}, "P.IVA 0123456789", ""},
		{"nothing", company.Record{}, "Copyright 2024", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.VAT(tt.rec, tt.footer)
			if tt.want == "" {
				if got != nil {
					t.Errorf("VAT() = %+v, want none", got)
				}
				return
			}
			want := []Signal{{Kind: KindVAT, Zone: ZoneFooter, Points: 25, Detail: tt.want}}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("VAT() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegistration(t *testing.T) {
	s := mustCompile(t)
	body := "Codice Fiscale 00941910788 - Partita IVA 00941910788 - REA CT-123456"
	want := []Signal{
		{Kind: KindRegistration, Zone: ZoneContent, Points: 10, Detail: "tax_code_label"},
		{Kind: KindRegistration, Zone: ZoneContent, Points: 10, Detail: "vat_label"},
		{Kind: KindRegistration, Zone: ZoneContent, Points: 10, Detail: "registry_enrollment"},
	}
	if diff := cmp.Diff(want, s.Registration(body)); diff != "" {
		t.Errorf("Registration() mismatch (-want +got):\n%s", diff)
	}
	if got := s.Registration("Registro delle imprese"); got != nil {
		t.Errorf("Registration() without digits = %+v", got)
	}
	if got := s.Registration("realizzazione siti web dal 1999 12345"); got != nil {
		t.Errorf("Registration() matched a word starting with rea: %+v", got)
	}
}

func TestCappedRemainder(t *testing.T) {
	got := capped(KindRegistration, ZoneContent, []string{"a", "b", "c"}, 10, 25)
	want := []Signal{
		{Kind: KindRegistration, Zone: ZoneContent, Points: 10, Detail: "a"},
		{Kind: KindRegistration, Zone: ZoneContent, Points: 10, Detail: "b"},
		{Kind: KindRegistration, Zone: ZoneContent, Points: 5, Detail: "c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("capped() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractOrderAndEmptyInputs(t *testing.T) {
	s := mustCompile(t)
	if got := s.Extract(company.Record{Name: "SIELTE", TaxCode: "00941910788"}, "", ""); got != nil {
		t.Errorf("Extract() on empty page = %+v", got)
	}

	got := s.Extract(company.Record{Name: "SIELTE", TaxCode: "00941910788"},
		"SIELTE 00941910788", "SIELTE 00941910788")
	var kinds []Kind
	for _, sig := range got {
		kinds = append(kinds, sig.Kind)
	}
	want := []Kind{KindName, KindName, KindTaxID, KindTaxID}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("Extract() kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileBadPattern(t *testing.T) {
	cfg := config.Default().Signals
	cfg.Registration.Patterns = []config.Pattern{{Name: "bad", Pattern: "("}}
	if _, err := Compile(cfg); err == nil {
		t.Error("Compile accepted an invalid pattern")
	}
}
