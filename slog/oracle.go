package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/prodscan/prodscan"
)

// Ensure LoggingOracle implements prodscan.EntityOracle.
var _ prodscan.EntityOracle = (*LoggingOracle)(nil)

// LoggingOracle wraps an EntityOracle with debug logging per
// classification call.
type LoggingOracle struct {
	next   prodscan.EntityOracle
	logger *slog.Logger
}

// NewLoggingOracle creates a new LoggingOracle.
func NewLoggingOracle(next prodscan.EntityOracle, logger *slog.Logger) *LoggingOracle {
	return &LoggingOracle{next: next, logger: logger}
}

// Classify delegates to the wrapped oracle and logs the operation.
func (o *LoggingOracle) Classify(ctx context.Context, text string) (findings []prodscan.EntityFinding, err error) {
	defer func(begin time.Time) {
		o.logger.Debug("entity classification",
			"text_len", len(text),
			"findings", len(findings),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return o.next.Classify(ctx, text)
}

// Loaded delegates to the wrapped oracle.
func (o *LoggingOracle) Loaded() bool {
	return o.next.Loaded()
}
