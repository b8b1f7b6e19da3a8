// Package goquery provides a CSS-selector based implementation of
// prodscan.CandidateExtractor using PuerkitoBio/goquery.
package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/prodscan/prodscan"
)

// classHints are the substrings a class token must contain (case
// insensitively) for its element to be selected by the class-hint rule.
var classHints = []string{"name", "title"}

// Ensure Extractor implements prodscan.CandidateExtractor at compile time.
var _ prodscan.CandidateExtractor = (*Extractor)(nil)

// Extractor extracts candidate product-name strings from HTML documents.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the document and applies the two selection rules in
// order: first every h1 heading, then every p/div/span whose class
// attribute hints at name/title semantics. The two passes are
// concatenated, so all heading candidates precede all class-hint
// candidates regardless of document position.
func (e *Extractor) Extract(html []byte) ([]prodscan.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, prodscan.Errorf(prodscan.EINVALID, "failed to parse HTML: %v", err)
	}

	var candidates []prodscan.Candidate

	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			candidates = append(candidates, prodscan.Candidate{
				Text: text,
				Rule: prodscan.RuleHeading,
			})
		}
	})

	doc.Find("p, div, span").Each(func(_ int, sel *goquery.Selection) {
		class, exists := sel.Attr("class")
		if !exists || !classMatchesHint(class) {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			candidates = append(candidates, prodscan.Candidate{
				Text: text,
				Rule: prodscan.RuleClassHint,
			})
		}
	})

	return candidates, nil
}

// classMatchesHint normalizes the class attribute to its token set and
// reports whether any token contains one of the hint substrings. The
// attribute arrives as a single space-separated string; splitting first
// keeps the matching rule uniform however many classes the element has.
func classMatchesHint(class string) bool {
	for _, token := range strings.Fields(class) {
		token = strings.ToLower(token)
		for _, hint := range classHints {
			if strings.Contains(token, hint) {
				return true
			}
		}
	}
	return false
}
