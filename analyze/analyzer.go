// Package analyze orchestrates the product-mention pipeline: fetch,
// candidate extraction, deduplication, oracle scoring, and ranking.
package analyze

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prodscan/prodscan"
)

// User-facing messages. Transport errors are never echoed to callers;
// the generic extraction-failed message covers every fetch failure kind.
const (
	msgFetchFailed  = "Failed to extract titles from this page."
	msgNoCandidates = "No candidate titles found on this page."
	msgNoProducts   = "No product names identified among the extracted titles."
)

// Analyzer runs the full pipeline for a single URL.
type Analyzer struct {
	Fetcher   prodscan.Fetcher
	Extractor prodscan.CandidateExtractor
	Scorer    *Scorer
	Logger    *slog.Logger
}

// NewAnalyzer creates an Analyzer with the given collaborators.
func NewAnalyzer(fetcher prodscan.Fetcher, extractor prodscan.CandidateExtractor, scorer *Scorer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		Fetcher:   fetcher,
		Extractor: extractor,
		Scorer:    scorer,
		Logger:    logger,
	}
}

// Analyze fetches the URL and returns the ranked analysis envelope.
//
// Outcomes are asymmetric on purpose: a page that could not be fetched
// at all reports Error true, while a page that fetched fine but yielded
// zero candidates or zero product classifications reports Error false
// with an explanatory message. The two must never be conflated.
//
// A non-nil error is returned only for unexpected internal failures
// (e.g. the parser rejecting input); fetch failures are folded into the
// envelope.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*prodscan.Analysis, error) {
	page, err := a.Fetcher.Fetch(ctx, url)
	if err != nil {
		var fetchErr *prodscan.FetchError
		if errors.As(err, &fetchErr) {
			a.Logger.Info("page fetch failed",
				"url", url,
				"kind", string(fetchErr.Kind),
				"status", fetchErr.StatusCode,
				"err", err,
			)
			return &prodscan.Analysis{
				Error:   true,
				Results: []prodscan.ScoredResult{},
				Message: msgFetchFailed,
			}, nil
		}
		return nil, err
	}

	a.Logger.Debug("page fetched",
		"url", url,
		"bytes", len(page.Body),
		"content_hash", page.ContentHash,
	)

	candidates, err := a.Extractor.Extract(page.Body)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	unique := Dedupe(texts)

	a.Logger.Info("candidates extracted",
		"url", url,
		"raw", len(texts),
		"unique", len(unique),
	)

	if len(unique) == 0 {
		return &prodscan.Analysis{
			Error:   false,
			Results: []prodscan.ScoredResult{},
			Message: msgNoCandidates,
		}, nil
	}

	results := Rank(a.Scorer.Score(ctx, unique))

	analysis := &prodscan.Analysis{
		Error:       false,
		Results:     results,
		TotalTitles: len(unique),
		Products:    len(results),
	}
	if len(results) == 0 {
		analysis.Message = msgNoProducts
	}
	return analysis, nil
}
