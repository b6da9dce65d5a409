package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/sitefinder/pkg/htmlutil"
	"github.com/codeGROOVE-dev/sitefinder/pkg/httpcache"
)

// resultContainers matches the result blocks of a Startpage results page.
const resultContainers = ".w-gl__result, .w-gl, .result"

// noResultMarkers are phrases of a genuine empty results page.
var noResultMarkers = []string{
	"nessun risultato",
	"did not match any",
	"no results found",
}

// StartpageURL is the Startpage HTML search endpoint.
const StartpageURL = "https://www.startpage.com/sp/search"

// Startpage implements Searcher by scraping the Startpage results page.
// No API key is needed; requests go through the shared cached client, so
// they are paced and retried like page fetches.
type Startpage struct {
	client  *httpcache.Client
	logger  *slog.Logger
	baseURL string
}

// NewStartpage creates a Startpage searcher. An empty baseURL selects StartpageURL.
func NewStartpage(client *httpcache.Client, baseURL string, logger *slog.Logger) *Startpage {
	if baseURL == "" {
		baseURL = StartpageURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Startpage{client: client, baseURL: baseURL, logger: logger}
}

// Search runs one query and returns every outbound result link in page order.
func (s *Startpage) Search(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, wrap("startpage", query, fmt.Errorf("parse endpoint: %w", err))
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("cat", "web")
	q.Set("pl", "opensearch")
	q.Set("language", "italiano")
	u.RawQuery = q.Encode()

	s.logger.DebugContext(ctx, "startpage search", "query", query)
	resp, err := s.client.GetWithValidator(ctx, u.String(), nil, checkResultsPage)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			s.logger.WarnContext(ctx, "startpage blocked the search", "query", query)
		}
		return nil, wrap("startpage", query, err)
	}

	results, err := parseStartpage(resp.Body, u.Hostname())
	if err != nil {
		return nil, wrap("startpage", query, err)
	}
	return results, nil
}

// checkResultsPage rejects captcha walls, interstitials and pages with no
// result blocks that do not say the query matched nothing.
func checkResultsPage(resp *httpcache.Response) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return fmt.Errorf("parse results page: %w", err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	lower := strings.ToLower(title + " " + text)

	if htmlutil.IsBotProtection(title, text) ||
		strings.Contains(lower, "captcha") ||
		doc.Find(`form[action*="captcha"], .g-recaptcha, .h-captcha`).Length() > 0 {
		return ErrBlocked
	}
	if doc.Find(resultContainers).Length() > 0 {
		return nil
	}
	for _, m := range noResultMarkers {
		if strings.Contains(lower, m) {
			return nil
		}
	}
	return ErrBlocked
}

// parseStartpage extracts result links. Links may be direct or wrapped in a
// redirector carrying the target in a url= parameter.
func parseStartpage(body []byte, selfHost string) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	var results []Result
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		target := unwrapResultURL(href)
		if target == "" {
			return
		}
		tu, err := url.Parse(target)
		if err != nil || tu.Host == "" || !strings.Contains(tu.Host, ".") {
			return
		}
		if selfHost != "" && strings.EqualFold(tu.Hostname(), selfHost) {
			return
		}
		title := strings.Join(strings.Fields(a.Text()), " ")
		snippet := strings.Join(strings.Fields(a.Closest(".w-gl__result, .result").Find("p").First().Text()), " ")
		results = append(results, Result{Title: title, URL: target, Snippet: snippet})
	})
	return results, nil
}

func unwrapResultURL(href string) string {
	href = strings.TrimSpace(href)
	if _, after, ok := strings.Cut(href, "url="); ok {
		raw, _, _ := strings.Cut(after, "&")
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return ""
		}
		href = decoded
	}
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return ""
	}
	return href
}
