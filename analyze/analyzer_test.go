package analyze_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/prodscan/prodscan"
	"github.com/prodscan/prodscan/analyze"
	"github.com/prodscan/prodscan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalyzer(fetcher *mock.Fetcher, extractor *mock.Extractor, oracle *mock.Oracle) *analyze.Analyzer {
	return analyze.NewAnalyzer(fetcher, extractor, analyze.NewScorer(oracle, "", nil), nil)
}

func productOracle(confidence float64) *mock.Oracle {
	return &mock.Oracle{
		ClassifyFn: func(context.Context, string) ([]prodscan.EntityFinding, error) {
			return []prodscan.EntityFinding{{EntityGroup: "PRODUCT", Confidence: confidence}}, nil
		},
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("fetch failure reports error with zero counts", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return nil, &prodscan.FetchError{Kind: prodscan.FailureHTTPStatus, URL: url, StatusCode: 404}
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) {
				t.Fatal("extractor must not run when the fetch failed")
				return nil, nil
			},
		}

		analysis, err := newAnalyzer(fetcher, extractor, productOracle(0.9)).Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.True(t, analysis.Error)
		assert.Empty(t, analysis.Results)
		assert.Zero(t, analysis.TotalTitles)
		assert.Zero(t, analysis.Products)
		assert.NotEmpty(t, analysis.Message)
	})

	t.Run("deduplicates before scoring and counts unique candidates", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return &prodscan.Page{URL: url, StatusCode: 200, Body: []byte("page")}, nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) {
				return []prodscan.Candidate{
					{Text: "Oak Chair", Rule: prodscan.RuleHeading},
					{Text: "Oak Chair", Rule: prodscan.RuleClassHint},
				}, nil
			},
		}

		analysis, err := newAnalyzer(fetcher, extractor, productOracle(0.87)).Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.False(t, analysis.Error)
		assert.Equal(t, []prodscan.ScoredResult{{Text: "Oak Chair", Confidence: 87}}, analysis.Results)
		assert.Equal(t, 1, analysis.TotalTitles)
		assert.Equal(t, 1, analysis.Products)
	})

	t.Run("zero candidates is reported as a negative result, not an error", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return &prodscan.Page{URL: url, StatusCode: 200, Body: []byte("<html></html>")}, nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) { return nil, nil },
		}

		analysis, err := newAnalyzer(fetcher, extractor, productOracle(0.9)).Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.False(t, analysis.Error)
		assert.Empty(t, analysis.Results)
		assert.NotEmpty(t, analysis.Message)
	})

	t.Run("candidates without product classifications keep counts apart", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return &prodscan.Page{URL: url, StatusCode: 200, Body: []byte("page")}, nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) {
				return []prodscan.Candidate{
					{Text: "About Us", Rule: prodscan.RuleHeading},
					{Text: "Contact", Rule: prodscan.RuleHeading},
				}, nil
			},
		}
		oracle := &mock.Oracle{
			ClassifyFn: func(context.Context, string) ([]prodscan.EntityFinding, error) {
				return []prodscan.EntityFinding{{EntityGroup: "ORG", Confidence: 0.9}}, nil
			},
		}

		analysis, err := newAnalyzer(fetcher, extractor, oracle).Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.False(t, analysis.Error)
		assert.Empty(t, analysis.Results)
		assert.Equal(t, 2, analysis.TotalTitles)
		assert.Zero(t, analysis.Products)
	})

	t.Run("results are ranked by descending confidence", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return &prodscan.Page{URL: url, StatusCode: 200, Body: []byte("page")}, nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) {
				return []prodscan.Candidate{
					{Text: "Pine Desk", Rule: prodscan.RuleHeading},
					{Text: "Oak Chair", Rule: prodscan.RuleHeading},
				}, nil
			},
		}
		confidences := map[string]float64{"Pine Desk": 0.42, "Oak Chair": 0.91}
		oracle := &mock.Oracle{
			ClassifyFn: func(_ context.Context, text string) ([]prodscan.EntityFinding, error) {
				return []prodscan.EntityFinding{{EntityGroup: "PRODUCT", Confidence: confidences[text]}}, nil
			},
		}

		analysis, err := newAnalyzer(fetcher, extractor, oracle).Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.Equal(t, []prodscan.ScoredResult{
			{Text: "Oak Chair", Confidence: 91},
			{Text: "Pine Desk", Confidence: 42},
		}, analysis.Results)
	})

	t.Run("not-loaded oracle returns empty results without failing", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return &prodscan.Page{URL: url, StatusCode: 200, Body: []byte("page")}, nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) {
				return []prodscan.Candidate{{Text: "Oak Chair", Rule: prodscan.RuleHeading}}, nil
			},
		}
		oracle := &mock.Oracle{
			ClassifyFn: func(context.Context, string) ([]prodscan.EntityFinding, error) {
				t.Fatal("Classify must not be called when the model is not loaded")
				return nil, nil
			},
			LoadedFn: func() bool { return false },
		}

		analysis, err := newAnalyzer(fetcher, extractor, oracle).Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.False(t, analysis.Error)
		assert.Empty(t, analysis.Results)
		assert.Equal(t, 1, analysis.TotalTitles)
		assert.Zero(t, analysis.Products)
	})

	t.Run("non-fetch errors propagate", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (*prodscan.Page, error) {
				return nil, fmt.Errorf("unexpected")
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) { return nil, nil },
		}

		_, err := newAnalyzer(fetcher, extractor, productOracle(0.9)).Analyze(context.Background(), "https://example.com")
		require.Error(t, err)
	})

	t.Run("identical inputs yield byte-identical response bodies", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*prodscan.Page, error) {
				return &prodscan.Page{URL: url, StatusCode: 200, Body: []byte("page")}, nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func([]byte) ([]prodscan.Candidate, error) {
				return []prodscan.Candidate{
					{Text: "Oak Chair", Rule: prodscan.RuleHeading},
					{Text: "Pine Desk", Rule: prodscan.RuleClassHint},
				}, nil
			},
		}
		analyzer := newAnalyzer(fetcher, extractor, productOracle(0.87))

		first, err := analyzer.Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)
		second, err := analyzer.Analyze(context.Background(), "https://example.com")
		require.NoError(t, err)

		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)
		secondJSON, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, firstJSON, secondJSON)
	})
}
