// Package slog provides logging decorators for prodscan interfaces,
// built on the standard library's log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/prodscan/prodscan"
)

// Ensure LoggingFetcher implements prodscan.Fetcher.
var _ prodscan.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with timing and outcome logging.
type LoggingFetcher struct {
	next   prodscan.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next prodscan.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *prodscan.Page, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		}
		if page != nil {
			attrs = append(attrs, "bytes", len(page.Body), "content_hash", page.ContentHash)
		}
		f.logger.Info("page fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
