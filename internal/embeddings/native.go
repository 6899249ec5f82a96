package embeddings

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/config"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// nativeEmbedder runs inference in-process against a local ONNX model,
// adapted from the teacher's ONNXEmbedder. A sync.Mutex serializes
// session.Run calls — spec.md §5 models "at most one concurrent
// inference call per instance" the same way the teacher guards its
// model manager with a mutex.
type nativeEmbedder struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tok       *tokenizer.Tokenizer
	dim       int
	modelName string
}

func newNativeEmbedder(cfg config.EmbeddingConfig) (Embedder, error) {
	if runtime.GOOS == "darwin" {
		ort.SetSharedLibraryPath("/opt/homebrew/lib/libonnxruntime.dylib")
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, apperrors.WrapMsg(apperrors.Op("embeddings.newNativeEmbedder"), "initialize ONNX runtime", err)
	}

	modelDir := filepath.Join(cfg.ModelsDirectory, sanitizeModelName(cfg.DefaultModel))
	onnxPath := filepath.Join(modelDir, variantFileName(cfg.DefaultVariant))

	session, err := ort.NewDynamicAdvancedSession(onnxPath, nil, nil, nil)
	if err != nil {
		return nil, apperrors.WrapMsg(apperrors.Op("embeddings.newNativeEmbedder"), "load ONNX session from "+onnxPath, err)
	}

	tokenizerPath := filepath.Join(modelDir, "tokenizer.json")
	tok, err := pretrained.FromFile(tokenizerPath)
	if err != nil {
		session.Destroy()
		return nil, apperrors.WrapMsg(apperrors.Op("embeddings.newNativeEmbedder"), "load tokenizer from "+tokenizerPath, err)
	}

	dim := cfg.Dimensions
	if dim == 0 {
		dim = 768
	}

	return &nativeEmbedder{session: session, tok: tok, dim: dim, modelName: cfg.DefaultModel}, nil
}

// sanitizeModelName mirrors the teacher's cache-directory naming for a
// HuggingFace model path ("org/name" -> "org_name").
func sanitizeModelName(modelPath string) string {
	out := make([]byte, 0, len(modelPath))
	for i := 0; i < len(modelPath); i++ {
		if modelPath[i] == '/' {
			out = append(out, '_')
		} else {
			out = append(out, modelPath[i])
		}
	}
	return string(out)
}

func variantFileName(variant string) string {
	switch variant {
	case "quantized":
		return "model_quantized.onnx"
	case "fp16":
		return "model_fp16.onnx"
	default:
		return "model.onnx"
	}
}

func (e *nativeEmbedder) Name() string   { return e.modelName }
func (e *nativeEmbedder) Dimension() int { return e.dim }

func (e *nativeEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.session.Destroy()
	}
	return nil
}

func (e *nativeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.Op("embeddings.nativeEmbedder.EmbedBatch"), err)
		}
		v, err := e.embedOne(text)
		if err != nil {
			return nil, apperrors.WrapMsg(apperrors.Op("embeddings.nativeEmbedder.EmbedBatch"),
				fmt.Sprintf("embed text %d", i), err)
		}
		results[i] = v
	}
	return results, nil
}

// embedOne tokenizes text, runs the ONNX session, and takes the last
// hidden state's first ([CLS]) token vector — the teacher's single-token
// extraction, no mean pooling — then L2-normalizes (spec.md §4.8).
func (e *nativeEmbedder) embedOne(text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.tok.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	seqLen := len(en.Ids)
	if seqLen == 0 {
		return nil, fmt.Errorf("empty token sequence")
	}

	inputIDs := make([]int64, seqLen)
	attentionMask := make([]int64, seqLen)
	for i, id := range en.Ids {
		inputIDs[i] = int64(id)
	}
	for i, m := range en.AttentionMask {
		attentionMask[i] = int64(m)
	}

	shape := ort.NewShape(1, int64(seqLen))
	inputTensor, err := ort.NewTensor[int64](shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	maskTensor, err := ort.NewTensor[int64](shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("build mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{inputTensor, maskTensor}, outputs); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}
	defer outputs[0].Destroy()

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected ONNX output type")
	}

	hidden := outTensor.GetData()
	embDim := len(hidden) / seqLen
	cls := make([]float32, embDim)
	copy(cls, hidden[:embDim])

	return normalize(cls), nil
}
