package mock

import (
	"context"

	"github.com/prodscan/prodscan"
)

var _ prodscan.EntityOracle = (*Oracle)(nil)

// Oracle is a mock implementation of prodscan.EntityOracle.
// LoadedFn defaults to loaded when unset, which is what most tests want.
type Oracle struct {
	ClassifyFn func(ctx context.Context, text string) ([]prodscan.EntityFinding, error)
	LoadedFn   func() bool
}

func (o *Oracle) Classify(ctx context.Context, text string) ([]prodscan.EntityFinding, error) {
	return o.ClassifyFn(ctx, text)
}

func (o *Oracle) Loaded() bool {
	if o.LoadedFn == nil {
		return true
	}
	return o.LoadedFn()
}
