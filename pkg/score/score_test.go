package score

import (
	"errors"
	"testing"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
	"github.com/codeGROOVE-dev/sitefinder/pkg/signal"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	cfg := config.Default()
	set, err := signal.Compile(cfg.Signals)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return New(set, cfg.Validation.FooterScoreCap)
}

var sielte = company.Record{Name: "SIELTE", TaxCode: "00941910788"}

func TestScoreFooterNameAndTaxCode(t *testing.T) {
	s := newScorer(t)
	footer := "SIELTE S.p.A. - Codice 00941910788"
	r := s.Score(sielte, Candidate{
		URL:        "https://www.sielte.it/",
		FooterText: footer,
		BodyText:   "Benvenuti " + footer,
	})

	if r.FooterScore != 50 {
		t.Errorf("FooterScore = %d, want 20+30 = 50", r.FooterScore)
	}
	// Footer text is part of the body scan: name 15 + tax id 25.
	if r.ContentScore != 40 {
		t.Errorf("ContentScore = %d, want 40", r.ContentScore)
	}
	if r.TotalScore != r.FooterScore+r.ContentScore {
		t.Errorf("TotalScore = %d, want footer+content", r.TotalScore)
	}
}

func TestScoreFooterCap(t *testing.T) {
	s := newScorer(t)
	// Name 20 + tax id 30 + VAT 25 = 75 in the footer.
	footer := "SIELTE S.p.A. C.F. 00941910788 P.IVA 00941910788"
	r := s.Score(sielte, Candidate{FooterText: footer})
	if r.FooterScore != 60 {
		t.Errorf("FooterScore = %d, want capped 60", r.FooterScore)
	}
	if r.ContentScore != 0 || r.TotalScore != 60 {
		t.Errorf("Content/Total = %d/%d, want 0/60", r.ContentScore, r.TotalScore)
	}
}

func TestScoreContentNotClipped(t *testing.T) {
	s := newScorer(t)
	rec := company.Record{Name: "Rossi Figli Costruzioni SRL", TaxCode: "01234567890"}
	body := "Rossi Figli Costruzioni SRL. Codice Fiscale 01234567890, Partita IVA 01234567890, REA RM-123456"
	r := s.Score(rec, Candidate{BodyText: body})
	// name 45 (capped) + tax id 25 + registration 30 (capped)
	if r.ContentScore != 100 {
		t.Errorf("ContentScore = %d, want 100", r.ContentScore)
	}
	if r.TotalScore != 100 {
		t.Errorf("TotalScore = %d, want 100", r.TotalScore)
	}
}

func TestScoreTitleCounts(t *testing.T) {
	s := newScorer(t)
	r := s.Score(sielte, Candidate{Title: "Sielte | Home"})
	if r.ContentScore != 15 {
		t.Errorf("ContentScore = %d, want 15 from the title", r.ContentScore)
	}
}

func TestScoreFetchError(t *testing.T) {
	s := newScorer(t)
	r := s.Score(sielte, Candidate{URL: "https://down.it/", Title: "SIELTE", FetchErr: errors.New("timeout")})
	if r.TotalScore != 0 || len(r.Signals) != 0 {
		t.Errorf("Score() on failed fetch = %+v, want zero evidence", r)
	}
}

func TestScoreAllKeepsOrder(t *testing.T) {
	s := newScorer(t)
	got := s.ScoreAll(sielte, []Candidate{{URL: "a", Rank: 0}, {URL: "b", Rank: 1}})
	if len(got) != 2 || got[0].Candidate.URL != "a" || got[1].Candidate.URL != "b" {
		t.Errorf("ScoreAll() = %+v", got)
	}
}
