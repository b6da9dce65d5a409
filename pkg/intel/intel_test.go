package intel

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
	"github.com/codeGROOVE-dev/sitefinder/pkg/fetch"
	"github.com/codeGROOVE-dev/sitefinder/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sitefinder/pkg/linkscore"
)

type fakeFetcher struct {
	pages   map[string]*fetch.Page
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.fetched = append(f.fetched, url)
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return nil, &fetch.Error{URL: url, Kind: fetch.KindStatus, Status: 404}
}

var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newGatherer(f fetch.Fetcher) *Gatherer {
	return New(f, linkscore.New(config.Default().Intelligence), WithClock(func() time.Time { return fixedTime }))
}

func TestGather(t *testing.T) {
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://www.sielte.it/": {
			Description: "Progettazione e manutenzione di reti di telecomunicazioni",
			BodyText:    "Sielte è leader nelle telecomunicazioni. Scrivi a mario.rossi@sielte.it",
			Links: []htmlutil.Link{
				{URL: "https://www.sielte.it/chi-siamo", Anchor: "Chi siamo"},
				{URL: "https://www.sielte.it/contatti", Anchor: "Contatti"},
				{URL: "https://www.sielte.it/servizi", Anchor: "Servizi"},
			},
		},
		"https://www.sielte.it/chi-siamo": {BodyText: "Reti in fibra ottica e telefonia."},
		"https://www.sielte.it/contatti": {
			BodyText: "Tel. +39 095 7171111 - info@sielte.it",
			HTML:     `<a href="mailto:commerciale@sielte.it">commerciale</a>`,
		},
	}}
	g := newGatherer(f)

	rec := company.Record{Name: "SIELTE", TaxCode: "00941910788"}
	r := g.Gather(context.Background(), company.Result{Company: rec, URL: "https://www.sielte.it/", Status: company.StatusValidated})

	if r.Status != StatusCompleted {
		t.Fatalf("Status = %q, want completed (error %q)", r.Status, r.Error)
	}
	wantPages := []string{"https://www.sielte.it/", "https://www.sielte.it/chi-siamo", "https://www.sielte.it/contatti"}
	if diff := cmp.Diff(wantPages, r.Pages); diff != "" {
		t.Errorf("Pages mismatch (-want +got):\n%s", diff)
	}
	// The services page was selected but returned 404.
	if len(f.fetched) != 4 {
		t.Errorf("fetched = %v, want homepage plus three subpages", f.fetched)
	}
	wantEmails := []string{"info@sielte.it", "commerciale@sielte.it", "mario.rossi@sielte.it"}
	if diff := cmp.Diff(wantEmails, r.Emails); diff != "" {
		t.Errorf("Emails mismatch (-want +got):\n%s", diff)
	}
	if len(r.Phones) != 1 {
		t.Errorf("Phones = %v, want one number", r.Phones)
	}
	if r.Classification.Primary() != "Telecomunicazioni" {
		t.Errorf("Primary = %q", r.Classification.Primary())
	}
	if r.Description != "Progettazione e manutenzione di reti di telecomunicazioni" {
		t.Errorf("Description = %q, want the homepage meta description", r.Description)
	}
	if !r.AnalyzedAt.Equal(fixedTime) {
		t.Errorf("AnalyzedAt = %v", r.AnalyzedAt)
	}
}

func TestGatherNoWebsite(t *testing.T) {
	f := &fakeFetcher{}
	r := newGatherer(f).Gather(context.Background(), company.NotFound(company.Record{Name: "X"}, 0))
	if r.Status != StatusNoWebsite || len(f.fetched) != 0 {
		t.Errorf("Gather() = %+v, fetched %v", r, f.fetched)
	}
}

func TestGatherHomepageError(t *testing.T) {
	f := &fakeFetcher{}
	r := newGatherer(f).Gather(context.Background(), company.Result{URL: "https://down.it/"})
	if r.Status != StatusError || r.Error == "" {
		t.Errorf("Gather() = %+v, want error status", r)
	}
}
