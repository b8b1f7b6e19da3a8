package analyze

import (
	"sort"

	"github.com/prodscan/prodscan"
)

// Rank orders scored results by descending confidence, in place, and
// returns the slice. The sort is stable so equal-confidence results keep
// their scoring order; no secondary key is defined.
func Rank(results []prodscan.ScoredResult) []prodscan.ScoredResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results
}
