package prodscan

// Candidate is a raw text string extracted from a page as a potential
// product name, together with the selection rule that produced it. The
// rule matters only during extraction; it does not influence scoring.
type Candidate struct {
	// Text is the trimmed visible text of the source element.
	// Always non-empty.
	Text string

	// Rule identifies which selection rule emitted the candidate.
	Rule SelectionRule
}

// SelectionRule identifies a candidate selection rule.
type SelectionRule string

// Selection rules applied by extractors, in emission order: all heading
// candidates precede all class-hint candidates.
const (
	RuleHeading   SelectionRule = "heading"
	RuleClassHint SelectionRule = "class_hint"
)

// CandidateExtractor produces candidate product-name strings from a raw
// HTML document.
type CandidateExtractor interface {
	// Extract parses the document and returns candidates in rule order:
	// heading-rule candidates first in document order, then class-hint
	// candidates in document order. Whitespace-only elements are skipped.
	Extract(html []byte) ([]Candidate, error)
}
