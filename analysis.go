package prodscan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScoredResult is a candidate the oracle classified as a product mention.
// Confidence is the oracle's raw score truncated (not rounded) to an
// integer percentage. On the wire it is rendered as "NN%".
type ScoredResult struct {
	Text       string
	Confidence int // percent, in [0,100]
}

// MarshalJSON renders the result as {"text": ..., "prob": "NN%"}.
func (r ScoredResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Text string `json:"text"`
		Prob string `json:"prob"`
	}{
		Text: r.Text,
		Prob: fmt.Sprintf("%d%%", r.Confidence),
	})
}

// UnmarshalJSON parses the wire representation produced by MarshalJSON.
func (r *ScoredResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Text string `json:"text"`
		Prob string `json:"prob"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	percent, err := strconv.Atoi(strings.TrimSuffix(wire.Prob, "%"))
	if err != nil {
		return Errorf(EINVALID, "invalid prob value %q", wire.Prob)
	}
	r.Text = wire.Text
	r.Confidence = percent
	return nil
}

// Analysis is the per-request result envelope. It is constructed once
// per request and returned immediately, never cached or persisted.
//
// Error is true only when the page could not be fetched at all. A page
// that fetched fine but yielded zero candidates or zero product
// classifications is a negative result, not an error, and keeps
// Error false with an explanatory message.
type Analysis struct {
	Error       bool           `json:"error"`
	Results     []ScoredResult `json:"results"`
	TotalTitles int            `json:"total_titles_found"`
	Products    int            `json:"products_identified"`
	Message     string         `json:"message,omitempty"`
}
