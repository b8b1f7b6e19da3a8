package onnx

import (
	"math"
	"strings"

	"github.com/prodscan/prodscan"
)

// outsideLabel is the IOB tag for tokens that are not part of any entity.
const outsideLabel = "O"

// tokenPrediction is the argmax label and probability for one token.
type tokenPrediction struct {
	Label string
	Score float64
}

// softmax converts one row of logits into probabilities.
func softmax(logits []float32) []float64 {
	max := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > max {
			max = float64(l)
		}
	}
	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// entityType strips the IOB prefix from a label: "B-PRODUCT" and
// "I-PRODUCT" both yield "PRODUCT".
func entityType(label string) string {
	if rest, ok := strings.CutPrefix(label, "B-"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(label, "I-"); ok {
		return rest
	}
	return label
}

// aggregate groups contiguous token predictions into entity findings,
// mirroring the "simple" aggregation of the original model pipeline:
// a B- tag starts a new group, an I- tag continues a group of the same
// type, and each finding's confidence is the mean of its token scores.
// Outside tokens are dropped.
func aggregate(preds []tokenPrediction) []prodscan.EntityFinding {
	var findings []prodscan.EntityFinding
	var groupType string
	var scores []float64

	flush := func() {
		if groupType == "" || len(scores) == 0 {
			return
		}
		var sum float64
		for _, s := range scores {
			sum += s
		}
		findings = append(findings, prodscan.EntityFinding{
			EntityGroup: groupType,
			Confidence:  sum / float64(len(scores)),
		})
		groupType, scores = "", nil
	}

	for _, pred := range preds {
		if pred.Label == outsideLabel || pred.Label == "" {
			flush()
			continue
		}
		typ := entityType(pred.Label)
		// A B- tag always opens a new group; I- and bare labels
		// continue a group of the same type.
		continues := !strings.HasPrefix(pred.Label, "B-") && typ == groupType
		if !continues {
			flush()
			groupType = typ
		}
		scores = append(scores, pred.Score)
	}
	flush()

	return findings
}
