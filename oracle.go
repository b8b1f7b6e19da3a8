package prodscan

import "context"

// TargetLabel is the entity label a finding must carry for its candidate
// to be considered a product mention.
const TargetLabel = "PRODUCT"

// EntityFinding is a single classification returned by the entity oracle.
// Depending on the backend, the label may arrive in the grouped field
// (aggregated entities) or the ungrouped field (per-token entities);
// Matches checks both so call sites never branch on which one is set.
type EntityFinding struct {
	// Entity is the ungrouped label, e.g. "B-PRODUCT".
	Entity string

	// EntityGroup is the aggregated label, e.g. "PRODUCT".
	EntityGroup string

	// Confidence is the oracle's probability for the finding, in [0,1].
	Confidence float64
}

// Matches reports whether the finding carries the given label in either
// the grouped or the ungrouped field.
func (f EntityFinding) Matches(label string) bool {
	return f.EntityGroup == label || f.Entity == label
}

// UnloadedOracle is the EntityOracle used when the model failed to
// load at boot. Requests detect it via Loaded and degrade to empty
// results instead of crashing.
type UnloadedOracle struct{}

// Classify always fails with EUNAVAILABLE.
func (UnloadedOracle) Classify(context.Context, string) ([]EntityFinding, error) {
	return nil, Errorf(EUNAVAILABLE, "entity model not loaded")
}

// Loaded always reports false.
func (UnloadedOracle) Loaded() bool { return false }

// EntityOracle classifies a text string into named-entity findings.
// The oracle is loaded once at process start and must be safe for
// concurrent read-only use across requests.
type EntityOracle interface {
	// Classify returns zero or more findings for the text.
	Classify(ctx context.Context, text string) ([]EntityFinding, error)

	// Loaded reports whether the backing model is available. Callers
	// degrade to empty results when it is not, rather than failing.
	Loaded() bool
}

// Ensure UnloadedOracle implements EntityOracle at compile time.
var _ EntityOracle = UnloadedOracle{}
