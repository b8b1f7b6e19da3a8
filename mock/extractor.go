package mock

import "github.com/prodscan/prodscan"

var _ prodscan.CandidateExtractor = (*Extractor)(nil)

// Extractor is a mock implementation of prodscan.CandidateExtractor.
type Extractor struct {
	ExtractFn func(html []byte) ([]prodscan.Candidate, error)
}

func (e *Extractor) Extract(html []byte) ([]prodscan.Candidate, error) {
	return e.ExtractFn(html)
}
