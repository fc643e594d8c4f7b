package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"stocks/internal/parser"
	"stocks/internal/scraper"
)

// Failure labels why a task failed.
type Failure string

const (
	FailureNone       Failure = ""
	FailureParsing    Failure = "parsing"
	FailureHTTP       Failure = "http"
	FailureTransport  Failure = "transport"
	FailureStore      Failure = "store"
	FailureUnexpected Failure = "unexpected"
)

// StoreError wraps an error returned while persisting rows.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PanicError is a panic recovered at the task boundary.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Classify returns the failure label for a task error.
func Classify(err error) Failure {
	if err == nil {
		return FailureNone
	}

	var storeErr *StoreError
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case parser.IsParsingError(err):
		return FailureParsing
	case scraper.IsStatusError(err):
		return FailureHTTP
	case errors.As(err, &storeErr):
		return FailureStore
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FailureTransport
	}
	return FailureUnexpected
}
