package htmlutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// FooterSelector matches the footer zone of a page.
const FooterSelector = "footer, [class*=footer], [id*=footer]"

// Link is an anchor found on a page, resolved against the page URL.
type Link struct {
	URL    string
	Anchor string // visible text, or the title attribute when empty
}

// Page is the parsed, text-level view of an HTML document.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Page struct {
	URL         string
	Title       string
	Description string
	Footer      string // visible text of the footer zone
	Text        string // visible text of the whole body, footer included
	Links       []Link // document order, absolute URLs
}

// Parse builds a Page from a response body. contentType is used to detect the
// charset; the document is transcoded to UTF-8 before parsing.
func Parse(body []byte, contentType, pageURL string) (*Page, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p := &Page{
		URL:         pageURL,
		Title:       collapse(doc.Find("title").First().Text()),
		Description: metaContent(doc, "description"),
	}
	if p.Title == "" {
		p.Title = metaContent(doc, "og:title")
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := ResolveURL(strings.TrimSpace(href), pageURL)
		if resolved == "" {
			return
		}
		text := collapse(s.Text())
		if text == "" {
			text, _ = s.Attr("title")
			text = collapse(text)
		}
		p.Links = append(p.Links, Link{URL: resolved, Anchor: text})
	})

	doc.Find("script, style, noscript, template, svg, iframe").Remove()

	footers := doc.Find(FooterSelector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered(FooterSelector).Length() == 0
	})
	p.Footer = visibleText(footers)

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	p.Text = visibleText(root)
	return p, nil
}

func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(`meta[name="` + name + `"], meta[property="` + name + `"]`).First()
	v, _ := sel.Attr("content")
	return collapse(v)
}

// visibleText joins every text node under the selection with single spaces,
// so adjacent block elements do not run their words together.
func visibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
		b.WriteByte(' ')
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
