package prodscan

import (
	"context"
	"fmt"
)

// Page represents a fetched web page.
type Page struct {
	// URL the page was fetched from.
	URL string

	// StatusCode is the HTTP status returned by the server.
	StatusCode int

	// Body is the raw document body.
	Body []byte

	// ContentHash is an xxhash digest of Body, used for log correlation.
	ContentHash string
}

// FailureKind categorizes a transport-level fetch failure.
type FailureKind string

// FailureKind values. FailureHTTPStatus means the request completed but
// the server answered with a non-200 status; the rest are transport
// failures.
const (
	FailureTLS        FailureKind = "tls"
	FailureConnection FailureKind = "connection"
	FailureTimeout    FailureKind = "timeout"
	FailureHTTPStatus FailureKind = "http_status"
	FailureOther      FailureKind = "other"
)

// FetchError is a categorized fetch failure. The pipeline collapses all
// kinds into a single "page could not be fetched" outcome; the kind is
// kept for logging and is never exposed to API callers.
type FetchError struct {
	Kind       FailureKind
	URL        string
	StatusCode int // set only for FailureHTTPStatus
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Kind == FailureHTTPStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves a single web page over HTTP.
// Implementations identify themselves with a browser-like User-Agent and
// bound the request with a timeout. Failures are reported as *FetchError.
type Fetcher interface {
	// Fetch performs a GET request for the URL and returns the page.
	// The context controls cancellation in addition to the fetcher's
	// own timeout.
	Fetch(ctx context.Context, url string) (*Page, error)
}
