package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig locates the exported token-classification model and its
// companion files on disk
type ONNXConfig struct {
	// ModelPath points at the exported model.onnx
	ModelPath string
	// VocabPath points at the tokenizer vocab.txt
	VocabPath string
	// LabelsPath points at labels.json, either a {"0":"O",...} object or a
	// plain array indexed by class id
	LabelsPath string
	// LibraryPath optionally overrides the onnxruntime shared library
	// location. Empty means the loader default
	LibraryPath string
	// Lowercase mirrors the tokenizer the model was trained with
	Lowercase bool
	// MaxSeqLen caps the token window fed to the session. Zero means 512
	MaxSeqLen int
}

// ONNX runs a BERT-style token classification model through onnxruntime.
// The session is initialized lazily on first Infer so a missing model file
// degrades the caller instead of failing process start
type ONNX struct {
	cfg ONNXConfig

	once    sync.Once
	initErr error
	sess    *ort.DynamicAdvancedSession
	tok     *wordPiece
	labels  []string
}

// NewONNX wires an ONNX inference port. Construction never touches disk
func NewONNX(cfg ONNXConfig) *ONNX {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	return &ONNX{cfg: cfg}
}

func (m *ONNX) init() error {
	m.once.Do(func() {
		m.initErr = m.setup()
	})
	return m.initErr
}

func (m *ONNX) setup() error {
	if m.cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(m.cfg.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("model: init onnxruntime: %w", err)
		}
	}

	tok, err := loadWordPiece(m.cfg.VocabPath, m.cfg.Lowercase)
	if err != nil {
		return err
	}
	labels, err := loadLabels(m.cfg.LabelsPath)
	if err != nil {
		return err
	}

	sess, err := ort.NewDynamicAdvancedSession(
		m.cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		nil,
	)
	if err != nil {
		return fmt.Errorf("model: open session: %w", err)
	}

	m.tok, m.labels, m.sess = tok, labels, sess
	return nil
}

// Infer tokenizes text, runs one forward pass and returns one Token per
// word piece with its argmax tag and softmax score. Wraps any setup or
// session failure in ErrUnavailable so callers can degrade
func (m *ONNX) Infer(ctx context.Context, text string) ([]Token, error) {
	if err := m.init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pieces := m.tok.Tokenize(text)
	if len(pieces) == 0 {
		return nil, nil
	}
	if max := m.cfg.MaxSeqLen - 2; len(pieces) > max {
		pieces = pieces[:max]
	}

	n := len(pieces) + 2 // [CLS] ... [SEP]
	ids := make([]int64, n)
	mask := make([]int64, n)
	types := make([]int64, n)
	ids[0] = int64(m.tok.clsID)
	ids[n-1] = int64(m.tok.sepID)
	for i, p := range pieces {
		ids[i+1] = int64(p.id)
	}
	for i := range mask {
		mask[i] = 1
	}

	shape := ort.NewShape(1, int64(n))
	in, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %v", ErrUnavailable, err)
	}
	defer in.Destroy()
	att, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("%w: mask tensor: %v", ErrUnavailable, err)
	}
	defer att.Destroy()
	tt, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("%w: type tensor: %v", ErrUnavailable, err)
	}
	defer tt.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(len(m.labels))))
	if err != nil {
		return nil, fmt.Errorf("%w: output tensor: %v", ErrUnavailable, err)
	}
	defer out.Destroy()

	if err := m.sess.Run([]ort.Value{in, att, tt}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("%w: run: %v", ErrUnavailable, err)
	}

	logits := out.GetData()
	k := len(m.labels)
	toks := make([]Token, 0, len(pieces))
	for i, p := range pieces {
		row := logits[(i+1)*k : (i+2)*k] // skip [CLS]
		tag, score := argmaxSoftmax(row)
		toks = append(toks, Token{
			Text:  text[p.start:p.end],
			Tag:   m.labels[tag],
			Score: score,
			Start: p.start,
			End:   p.end,
		})
	}
	return toks, nil
}

// Close releases the onnxruntime session if one was opened
func (m *ONNX) Close() error {
	if m.sess != nil {
		return m.sess.Destroy()
	}
	return nil
}

func argmaxSoftmax(row []float32) (int, float64) {
	best, max := 0, row[0]
	for i, v := range row {
		if v > max {
			best, max = i, v
		}
	}
	var sum float64
	for _, v := range row {
		sum += math.Exp(float64(v - max))
	}
	return best, 1 / sum
}

func loadLabels(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read labels: %w", err)
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var obj map[string]string
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("model: parse labels: %w", err)
	}
	if len(obj) == 0 {
		return nil, fmt.Errorf("model: labels file is empty")
	}
	keys := make([]int, 0, len(obj))
	byID := make(map[int]string, len(obj))
	for k, v := range obj {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("model: label key %q is not an index", k)
		}
		keys = append(keys, id)
		byID[id] = v
	}
	sort.Ints(keys)
	out := make([]string, len(keys))
	for i, id := range keys {
		if id != i {
			return nil, fmt.Errorf("model: label indices are not contiguous at %d", id)
		}
		out[i] = byID[id]
	}
	return out, nil
}
