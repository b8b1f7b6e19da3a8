package gemini_test

import (
	"context"
	"testing"

	"github.com/prodscan/prodscan"
	"github.com/prodscan/prodscan/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOracle_Loaded(t *testing.T) {
	t.Parallel()

	t.Run("without a client the oracle is not loaded", func(t *testing.T) {
		t.Parallel()

		oracle := gemini.NewOracle(nil)

		assert.False(t, oracle.Loaded())
	})

	t.Run("classify without a client reports unavailable", func(t *testing.T) {
		t.Parallel()

		oracle := gemini.NewOracle(nil)

		_, err := oracle.Classify(context.Background(), "Oak Chair")
		require.Error(t, err)
		assert.Equal(t, prodscan.EUNAVAILABLE, prodscan.ErrorCode(err))
	})
}

func TestBuildUserPrompt(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildUserPrompt("Oak Chair")

	assert.Contains(t, prompt, "Oak Chair")
}

func TestParseFindings(t *testing.T) {
	t.Parallel()

	t.Run("parses a plain JSON array", func(t *testing.T) {
		t.Parallel()

		findings, err := gemini.ParseFindings(`[{"label":"PRODUCT","confidence":0.87}]`)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, "PRODUCT", findings[0].EntityGroup)
		assert.InDelta(t, 0.87, findings[0].Confidence, 1e-9)
	})

	t.Run("tolerates markdown code fences", func(t *testing.T) {
		t.Parallel()

		findings, err := gemini.ParseFindings("```json\n[{\"label\":\"PRODUCT\",\"confidence\":0.5}]\n```")
		require.NoError(t, err)
		assert.Len(t, findings, 1)
	})

	t.Run("clamps confidence into the unit interval", func(t *testing.T) {
		t.Parallel()

		findings, err := gemini.ParseFindings(`[{"label":"PRODUCT","confidence":1.7},{"label":"ORG","confidence":-0.2}]`)
		require.NoError(t, err)
		require.Len(t, findings, 2)
		assert.Equal(t, 1.0, findings[0].Confidence)
		assert.Equal(t, 0.0, findings[1].Confidence)
	})

	t.Run("empty response yields no findings", func(t *testing.T) {
		t.Parallel()

		findings, err := gemini.ParseFindings("")
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("non-JSON response reports internal error", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.ParseFindings("I found no entities.")
		require.Error(t, err)
		assert.Equal(t, prodscan.EINTERNAL, prodscan.ErrorCode(err))
	})
}
