package analyze

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/prodscan/prodscan"
)

// ScoreStatus describes the outcome of scoring a single candidate.
// Making the outcome a value rather than a caught exception keeps the
// skip paths visible at the call site.
type ScoreStatus int

const (
	// ScoreKept means the oracle classified the candidate as a product.
	ScoreKept ScoreStatus = iota

	// ScoreNoMatch means the oracle returned findings but none carried
	// the target label.
	ScoreNoMatch

	// ScoreTooShort means the candidate was below the minimum length
	// and never reached the oracle.
	ScoreTooShort

	// ScoreFailed means the oracle call itself failed; the candidate is
	// skipped and the pipeline continues.
	ScoreFailed
)

// minCandidateLen is the minimum trimmed length, in characters, a
// candidate must have to be worth classifying.
const minCandidateLen = 2

// Scorer drives unique candidates through the entity oracle and keeps
// the ones classified under the target label.
type Scorer struct {
	Oracle prodscan.EntityOracle
	Label  string
	Logger *slog.Logger
}

// NewScorer creates a Scorer for the given oracle and target label.
func NewScorer(oracle prodscan.EntityOracle, label string, logger *slog.Logger) *Scorer {
	if label == "" {
		label = prodscan.TargetLabel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{Oracle: oracle, Label: label, Logger: logger}
}

// Score classifies each candidate in turn, sequentially, and returns the
// results that matched the target label in input order. A not-loaded
// oracle yields no results rather than an error; a failed oracle call
// skips that one candidate only.
func (s *Scorer) Score(ctx context.Context, candidates []string) []prodscan.ScoredResult {
	results := make([]prodscan.ScoredResult, 0, len(candidates))
	if !s.Oracle.Loaded() {
		return results
	}

	for _, candidate := range candidates {
		result, status := s.scoreOne(ctx, candidate)
		if status == ScoreKept {
			results = append(results, result)
		}
	}
	return results
}

// scoreOne classifies a single candidate. The first finding carrying the
// target label wins; later findings are not examined even if they score
// higher.
func (s *Scorer) scoreOne(ctx context.Context, candidate string) (prodscan.ScoredResult, ScoreStatus) {
	if utf8.RuneCountInString(strings.TrimSpace(candidate)) < minCandidateLen {
		return prodscan.ScoredResult{}, ScoreTooShort
	}

	findings, err := s.Oracle.Classify(ctx, candidate)
	if err != nil {
		s.Logger.Warn("oracle classification failed",
			"candidate", candidate,
			"err", err,
		)
		return prodscan.ScoredResult{}, ScoreFailed
	}

	for _, finding := range findings {
		if finding.Matches(s.Label) {
			return prodscan.ScoredResult{
				Text:       candidate,
				Confidence: int(finding.Confidence * 100),
			}, ScoreKept
		}
	}
	return prodscan.ScoredResult{}, ScoreNoMatch
}
