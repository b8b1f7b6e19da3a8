// Package http provides the HTTP implementations for prodscan: the
// page fetcher and the API server.
package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/prodscan/prodscan"
)

// DefaultFetchTimeout is the default timeout for page fetches.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 5 * 1024 * 1024

// DefaultUserAgent is a browser-like identification header. Some sites
// refuse requests from obviously non-browser clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Ensure Fetcher implements prodscan.Fetcher at compile time.
var _ prodscan.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves web pages over plain HTTP GET requests and
// classifies failures into the prodscan failure taxonomy.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps the number of response body bytes read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// NewFetcher creates a new page Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch performs the GET request and returns the page. Any failure is
// returned as *prodscan.FetchError with a classified kind; a non-200
// status is a failure of kind FailureHTTPStatus.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*prodscan.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &prodscan.FetchError{Kind: prodscan.FailureOther, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &prodscan.FetchError{Kind: classifyTransportError(err), URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &prodscan.FetchError{
			Kind:       prodscan.FailureHTTPStatus,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d for %s", resp.StatusCode, url),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, &prodscan.FetchError{Kind: classifyTransportError(err), URL: url, Err: err}
	}

	return &prodscan.Page{
		URL:         url,
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentHash: fmt.Sprintf("%016x", xxhash.Sum64(body)),
	}, nil
}

// classifyTransportError maps a transport-level error to a FailureKind.
// Ordering matters: timeouts surface as net.Error before the more
// general connection checks, and TLS failures are checked first because
// they arrive wrapped in url.Error/net.OpError chains.
func classifyTransportError(err error) prodscan.FailureKind {
	var certErr *tls.CertificateVerificationError
	var hostErr x509.HostnameError
	var authErr x509.UnknownAuthorityError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &authErr) {
		return prodscan.FailureTLS
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return prodscan.FailureTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return prodscan.FailureConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return prodscan.FailureConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return prodscan.FailureConnection
	}

	return prodscan.FailureOther
}
