// Package search queries web search providers for candidate company websites.
package search

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSearch matches every *Error with errors.Is.
	ErrSearch = errors.New("search failed")
	// ErrBlocked is a captcha, interstitial or empty page served instead of results.
	ErrBlocked = errors.New("provider blocked the request")
)

// Error is a failed search: provider block, timeout, bad response or open breaker.
type Error struct {
	Err      error
	Provider string
	Query    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s search %q: %v", e.Provider, e.Query, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrSearch as a match.
func (*Error) Is(target error) bool { return target == ErrSearch }

// Result is one organic search result, in provider order.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher performs web searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

func wrap(provider, query string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Provider: provider, Query: query, Err: err}
}
