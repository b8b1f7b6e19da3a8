package analyze_test

import (
	"testing"

	"github.com/prodscan/prodscan/analyze"
	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	t.Parallel()

	t.Run("removes repeated strings keeping first occurrence", func(t *testing.T) {
		t.Parallel()

		got := analyze.Dedupe([]string{"Oak Chair", "Pine Desk", "Oak Chair", "Pine Desk", "Walnut Table"})

		assert.Equal(t, []string{"Oak Chair", "Pine Desk", "Walnut Table"}, got)
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		t.Parallel()

		got := analyze.Dedupe([]string{"c", "a", "b", "a", "c"})

		assert.Equal(t, []string{"c", "a", "b"}, got)
	})

	t.Run("comparison is exact, not normalized", func(t *testing.T) {
		t.Parallel()

		got := analyze.Dedupe([]string{"Oak Chair", "oak chair", "Oak Chair "})

		assert.Equal(t, []string{"Oak Chair", "oak chair", "Oak Chair "}, got)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, analyze.Dedupe(nil))
	})

	t.Run("output is never longer than input", func(t *testing.T) {
		t.Parallel()

		input := []string{"a", "a", "a", "b"}
		got := analyze.Dedupe(input)

		assert.LessOrEqual(t, len(got), len(input))
	})
}
