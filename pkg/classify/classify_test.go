package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/sitefinder/pkg/config"
)

const sielteText = "Sielte è leader nelle telecomunicazioni. Realizziamo reti in fibra ottica e " +
	"infrastrutture di rete, servizi di telefonia e cybersecurity per la pubblica amministrazione."

func TestKeyword(t *testing.T) {
	got, err := Keyword{}.Classify(context.Background(), sielteText, DefaultTaxonomy())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	var names []string
	for _, c := range got.Categories {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Telecomunicazioni", "Sicurezza Informatica"}, names); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if got.Categories[0].Score != 57 || got.Confidence != 1 {
		t.Errorf("top = %d/%v, want 57/1", got.Categories[0].Score, got.Confidence)
	}
	if got.Categories[1].Score != 11 {
		t.Errorf("second score = %d, want 11", got.Categories[1].Score)
	}
	if got.BusinessFocus != "Leader in telecomunicazioni" {
		t.Errorf("BusinessFocus = %q", got.BusinessFocus)
	}
	want := []string{"Government & Public Sector", "Telecommunications"}
	if diff := cmp.Diff(want, got.MarketSegments); diff != "" {
		t.Errorf("MarketSegments mismatch (-want +got):\n%s", diff)
	}
	if got.Source != SourceKeyword || got.Primary() != "Telecomunicazioni" {
		t.Errorf("Source/Primary = %s/%s", got.Source, got.Primary())
	}
}

func TestKeywordNoMatch(t *testing.T) {
	got, err := Keyword{}.Classify(context.Background(), "Benvenuti", DefaultTaxonomy())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(got.Categories) != 0 || got.Confidence != 0 || got.Primary() != "" {
		t.Errorf("Classify() = %+v, want empty", got)
	}
}

func TestLoadTaxonomy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	if err := os.WriteFile(path, []byte(`{"Edilizia": ["costruzioni", "ristrutturazioni"]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	tax, err := LoadTaxonomy(path)
	if err != nil {
		t.Fatalf("LoadTaxonomy: %v", err)
	}
	if diff := cmp.Diff(Taxonomy{"Edilizia": {"costruzioni", "ristrutturazioni"}}, tax); diff != "" {
		t.Errorf("LoadTaxonomy mismatch (-want +got):\n%s", diff)
	}

	if tax, err := LoadTaxonomy(""); err != nil || len(tax) == 0 {
		t.Errorf("LoadTaxonomy(\"\") = %v, %v; want defaults", tax, err)
	}
	if _, err := LoadTaxonomy(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadTaxonomy accepted a missing file")
	}
}

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "gemma3" {
			t.Errorf("model = %v, want gemma3", req["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gemma3",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func classifierConfig(endpoint string) config.Classifier {
	return config.Classifier{Endpoint: endpoint, Model: "gemma3", Timeout: 5 * time.Second, Temperature: 0.3}
}

func TestOpenAI(t *testing.T) {
	content := "Ecco il risultato:\n```json\n" +
		`{"all_applicable_categories":[{"category":"Telecomunicazioni","confidence":0.9,` +
		`"subcategories_found":["telefonia"],"evidence_keywords":["fibra"]}],` +
		`"business_focus":"reti","market_segments":["Telecommunications"],"overall_confidence":0.85}` +
		"\n```"
	srv := chatServer(t, content, http.StatusOK)

	got, err := NewOpenAI(classifierConfig(srv.URL+"/v1"), nil).Classify(context.Background(), sielteText, DefaultTaxonomy())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	want := &Classification{
		Source: SourceAI,
		Categories: []Category{{
			Name: "Telecomunicazioni", Confidence: 0.9,
			Subcategories: []string{"telefonia"}, Keywords: []string{"fibra"},
		}},
		Confidence:     0.85,
		BusinessFocus:  "reti",
		MarketSegments: []string{"Telecommunications"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAIErrors(t *testing.T) {
	srv := chatServer(t, "", http.StatusServiceUnavailable)
	_, err := NewOpenAI(classifierConfig(srv.URL+"/v1"), nil).Classify(context.Background(), "x", DefaultTaxonomy())
	if !errors.Is(err, ErrClassify) {
		t.Errorf("error = %v, want ErrClassify", err)
	}

	srv = chatServer(t, "non ho capito", http.StatusOK)
	_, err = NewOpenAI(classifierConfig(srv.URL+"/v1"), nil).Classify(context.Background(), "x", DefaultTaxonomy())
	if !errors.Is(err, ErrClassify) {
		t.Errorf("error = %v, want ErrClassify for non-JSON content", err)
	}
}

type failing struct{}

func (failing) Classify(context.Context, string, Taxonomy) (*Classification, error) {
	return nil, ErrClassify
}

func TestFallback(t *testing.T) {
	f := Fallback{Primary: failing{}, Secondary: Keyword{}}
	got, err := f.Classify(context.Background(), sielteText, DefaultTaxonomy())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Source != SourceKeyword || got.Primary() != "Telecomunicazioni" {
		t.Errorf("Fallback result = %s/%s, want keyword/Telecomunicazioni", got.Source, got.Primary())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Classify(ctx, sielteText, DefaultTaxonomy()); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled Classify error = %v", err)
	}
}
