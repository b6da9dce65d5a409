// Package sink persists company results as they are decided.
//
// Every sink is append-only and durable per record: a Write that returns nil
// has reached the operating system, so an interrupted run loses at most the
// company in flight. Sinks serialize their own writes and may be shared by
// concurrent workers.
package sink

import (
	"context"
	"errors"

	"github.com/codeGROOVE-dev/sitefinder/pkg/company"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("sink closed")

// Sink receives one result per company.
type Sink interface {
	Write(ctx context.Context, res company.Result) error
	Close() error
}

// Multi fans a result out to several sinks.
type Multi []Sink

// Write writes to every sink and joins the failures.
func (m Multi) Write(ctx context.Context, res company.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
