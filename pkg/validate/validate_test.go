package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
	"github.com/codeGROOVE-dev/sitefinder/pkg/score"
)

func TestClassify(t *testing.T) {
	v := New(config.Default().Validation)
	tests := []struct {
		total  int
		status company.Status
		high   bool
	}{
		{-5, company.StatusRejected, false},
		{0, company.StatusRejected, false},
		{1, company.StatusLowConfidence, false},
		{49, company.StatusLowConfidence, false},
		{50, company.StatusValidated, false},
		{79, company.StatusValidated, false},
		{80, company.StatusValidated, true},
		{140, company.StatusValidated, true},
	}
	for _, tt := range tests {
		status, high := v.Classify(tt.total)
		if status != tt.status || high != tt.high {
			t.Errorf("Classify(%d) = %s/%v, want %s/%v", tt.total, status, high, tt.status, tt.high)
		}
	}
}

func res(url string, rank, footer, content int) score.Result {
	return score.Result{
		Candidate:    score.Candidate{URL: url, Rank: rank, Title: "title " + url},
		FooterScore:  footer,
		ContentScore: content,
		TotalScore:   footer + content,
	}
}

func TestSelect(t *testing.T) {
	v := New(config.Default().Validation)
	rec := company.Record{Name: "SIELTE", TaxCode: "00941910788"}

	tests := []struct {
		name    string
		results []score.Result
		want    company.Result
	}{
		{
			name: "no candidates",
			want: company.Result{Company: rec, Status: company.StatusNotFound},
		},
		{
			name:    "all rejected",
			results: []score.Result{res("https://a.it/", 0, 0, 0), res("https://b.it/", 1, 0, 0)},
			want:    company.Result{Company: rec, Status: company.StatusNotFound, CandidatesChecked: 2},
		},
		{
			name:    "highest total wins",
			results: []score.Result{res("https://a.it/", 0, 0, 15), res("https://b.it/", 1, 50, 40)},
			want: company.Result{
				Company: rec, URL: "https://b.it/", ConfidenceScore: 90, Status: company.StatusValidated,
				HighConfidence: true, PageTitle: "title https://b.it/", CandidatesChecked: 2,
			},
		},
		{
			name:    "footer breaks total tie",
			results: []score.Result{res("https://a.it/", 0, 0, 30), res("https://b.it/", 1, 20, 10)},
			want: company.Result{
				Company: rec, URL: "https://b.it/", ConfidenceScore: 30, Status: company.StatusLowConfidence,
				PageTitle: "title https://b.it/", CandidatesChecked: 2,
			},
		},
		{
			name:    "rank breaks full tie",
			results: []score.Result{res("https://b.it/", 1, 20, 40), res("https://a.it/", 0, 20, 40)},
			want: company.Result{
				Company: rec, URL: "https://a.it/", ConfidenceScore: 60, Status: company.StatusValidated,
				PageTitle: "title https://a.it/", CandidatesChecked: 2,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := v.Select(rec, tt.results)
			if diff := cmp.Diff(tt.want, d.Result); diff != "" {
				t.Errorf("Select() mismatch (-want +got):\n%s", diff)
			}
			if (d.Winner == nil) != (tt.want.URL == "") {
				t.Errorf("Winner = %+v, want presence %v", d.Winner, tt.want.URL != "")
			}
		})
	}
}

func TestSelectWinnerFromInput(t *testing.T) {
	v := New(config.Default().Validation)
	results := []score.Result{res("https://a.it/", 0, 60, 45), res("https://b.it/", 1, 60, 45)}
	d := v.Select(company.Record{Name: "x"}, results)
	if d.Winner != &results[0] {
		t.Errorf("Winner does not point into the input slice")
	}
}
