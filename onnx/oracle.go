// Package onnx provides the default prodscan.EntityOracle: a local
// token-classification (NER) model executed through ONNX Runtime, with
// tokenization handled by a HuggingFace-compatible tokenizer file.
package onnx

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"

	"github.com/prodscan/prodscan"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// DefaultMaxSeqLen is the default token sequence cap. Candidates are
// short strings, so this is generous.
const DefaultMaxSeqLen = 128

// Config locates the model artifacts.
type Config struct {
	// ModelPath is the exported token-classification model (.onnx).
	ModelPath string

	// TokenizerPath is the tokenizer.json accompanying the model.
	TokenizerPath string

	// LabelsPath is the model's config.json; only its id2label map is
	// read.
	LabelsPath string

	// LibraryPath optionally points at the onnxruntime shared library.
	// When empty the platform default is used.
	LibraryPath string

	// MaxSeqLen caps the token sequence length. Defaults to
	// DefaultMaxSeqLen.
	MaxSeqLen int
}

// Ensure Oracle implements prodscan.EntityOracle at compile time.
var _ prodscan.EntityOracle = (*Oracle)(nil)

// Oracle classifies text with a local ONNX NER model. It is loaded once
// at process start and never reloaded.
type Oracle struct {
	// mu serializes invocations: the ORT session tolerates concurrent
	// Run calls but the tokenizer does not document thread safety.
	mu sync.Mutex

	tk        *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	labels    map[int]string
	maxSeqLen int
}

// NewOracle loads the tokenizer, label map, and model session. A failed
// load returns an error; the caller is expected to fall back to
// prodscan.UnloadedOracle so the service degrades instead of crashing.
func NewOracle(cfg Config) (*Oracle, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = DefaultMaxSeqLen
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "initialize onnxruntime: %v", err)
		}
	}

	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "load tokenizer %s: %v", cfg.TokenizerPath, err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "load model %s: %v", cfg.ModelPath, err)
	}

	return &Oracle{
		tk:        tk,
		session:   session,
		labels:    labels,
		maxSeqLen: cfg.MaxSeqLen,
	}, nil
}

// Close releases the ONNX session.
func (o *Oracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		if err := o.session.Destroy(); err != nil {
			return err
		}
		o.session = nil
	}
	return nil
}

// Loaded reports whether the model session is available.
func (o *Oracle) Loaded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil
}

// Classify tokenizes the text, runs the model, and aggregates per-token
// predictions into entity findings.
func (o *Oracle) Classify(ctx context.Context, text string) ([]prodscan.EntityFinding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "entity model not loaded")
	}

	en, err := o.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, prodscan.Errorf(prodscan.EINTERNAL, "tokenize: %v", err)
	}

	ids := en.Ids
	mask := en.AttentionMask
	special := en.SpecialTokenMask
	if len(ids) > o.maxSeqLen {
		ids = ids[:o.maxSeqLen]
		mask = mask[:o.maxSeqLen]
		special = special[:o.maxSeqLen]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	logits, shape, err := o.run(ids, mask)
	if err != nil {
		return nil, err
	}

	// shape is [1, seqLen, numLabels].
	if len(shape) != 3 || shape[2] == 0 {
		return nil, prodscan.Errorf(prodscan.EINTERNAL, "unexpected logits shape %v", shape)
	}
	seqLen := int(shape[1])
	numLabels := int(shape[2])

	preds := make([]tokenPrediction, 0, seqLen)
	for i := 0; i < seqLen && i < len(ids); i++ {
		if special[i] == 1 || mask[i] == 0 {
			continue
		}
		probs := softmax(logits[i*numLabels : (i+1)*numLabels])
		best, bestScore := 0, probs[0]
		for j, p := range probs[1:] {
			if p > bestScore {
				best, bestScore = j+1, p
			}
		}
		preds = append(preds, tokenPrediction{
			Label: o.labels[best],
			Score: bestScore,
		})
	}

	return aggregate(preds), nil
}

// run executes the model for one encoded sequence and returns the raw
// logits with their shape.
func (o *Oracle) run(ids, mask []int) ([]float32, []int64, error) {
	n := int64(len(ids))
	ids64 := make([]int64, len(ids))
	mask64 := make([]int64, len(mask))
	for i := range ids {
		ids64[i] = int64(ids[i])
		mask64[i] = int64(mask[i])
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(1, n), ids64)
	if err != nil {
		return nil, nil, prodscan.Errorf(prodscan.EINTERNAL, "create input tensor: %v", err)
	}
	defer inputTensor.Destroy()

	maskTensor, err := ort.NewTensor(ort.NewShape(1, n), mask64)
	if err != nil {
		return nil, nil, prodscan.Errorf(prodscan.EINTERNAL, "create mask tensor: %v", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := o.session.Run([]ort.Value{inputTensor, maskTensor}, outputs); err != nil {
		return nil, nil, prodscan.Errorf(prodscan.EINTERNAL, "model inference: %v", err)
	}

	logits, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, nil, prodscan.Errorf(prodscan.EINTERNAL, "unexpected model output type %T", outputs[0])
	}
	defer logits.Destroy()

	data := make([]float32, len(logits.GetData()))
	copy(data, logits.GetData())
	return data, logits.GetShape(), nil
}

// loadLabels reads the id2label map from the model's config.json.
func loadLabels(path string) (map[int]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "read model config %s: %v", path, err)
	}

	var cfg struct {
		ID2Label map[string]string `json:"id2label"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "parse model config %s: %v", path, err)
	}
	if len(cfg.ID2Label) == 0 {
		return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "model config %s has no id2label map", path)
	}

	labels := make(map[int]string, len(cfg.ID2Label))
	for id, label := range cfg.ID2Label {
		n, err := strconv.Atoi(id)
		if err != nil {
			return nil, prodscan.Errorf(prodscan.EUNAVAILABLE, "invalid label id %q in %s", id, path)
		}
		labels[n] = label
	}
	return labels, nil
}
