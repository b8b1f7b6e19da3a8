package mock

import (
	"context"

	"github.com/prodscan/prodscan"
)

var _ prodscan.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of prodscan.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*prodscan.Page, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*prodscan.Page, error) {
	return f.FetchFn(ctx, url)
}
