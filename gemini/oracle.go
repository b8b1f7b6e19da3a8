// Package gemini provides an alternative prodscan.EntityOracle backed
// by the Google Gemini API, for deployments without a local model.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prodscan/prodscan"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Oracle implements prodscan.EntityOracle at compile time.
var _ prodscan.EntityOracle = (*Oracle)(nil)

// Oracle classifies text into named-entity findings using Gemini.
type Oracle struct {
	client *genai.Client
}

// NewOracle creates a new Oracle.
func NewOracle(client *genai.Client) *Oracle {
	return &Oracle{client: client}
}

// Loaded reports whether the API client is configured.
func (o *Oracle) Loaded() bool {
	return o != nil && o.client != nil
}

// Classify asks the model for named-entity findings in the text.
func (o *Oracle) Classify(ctx context.Context, text string) ([]prodscan.EntityFinding, error) {
	if !o.Loaded() {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "gemini client not configured")
	}
	if text == "" {
		return nil, prodscan.Errorf(prodscan.EINVALID, "text required")
	}

	result, err := o.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(text)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, prodscan.Errorf(prodscan.EINTERNAL, "gemini returned nil result")
	}

	return ParseFindings(result.Text())
}

// BuildConfig returns the GenerateContentConfig for classification calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a named-entity recognition system for product mentions. " +
					"Given a text, return a JSON array of entities found in it, each as " +
					`{"label": "<ENTITY TYPE>", "confidence": <0..1>}. Use the label ` +
					`"PRODUCT" for product names. Return [] when no entity is present. ` +
					"Return only JSON, no prose.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt for a classification request.
func BuildUserPrompt(text string) string {
	return fmt.Sprintf("Text: %s", text)
}

// ParseFindings parses the model's JSON response into findings.
// Markdown code fences around the JSON are tolerated.
func ParseFindings(response string) ([]prodscan.EntityFinding, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil, nil
	}

	var wire []struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, prodscan.Errorf(prodscan.EINTERNAL, "unparseable gemini response: %v", err)
	}

	findings := make([]prodscan.EntityFinding, 0, len(wire))
	for _, w := range wire {
		confidence := w.Confidence
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}
		findings = append(findings, prodscan.EntityFinding{
			EntityGroup: w.Label,
			Confidence:  confidence,
		})
	}
	return findings, nil
}
