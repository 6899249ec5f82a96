package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/config"
)

// httpEmbedder calls an HTTP embedding endpoint — OpenAI, an
// OpenAI-wire-compatible server, Gemini, Ollama, or a bespoke local
// service — selected by cfg.Backend. The request/response shape differs
// per backend; EmbedBatch dispatches to the matching encode/decode pair
// and L2-normalizes every returned vector the same way the native
// backend does.
type httpEmbedder struct {
	client  *http.Client
	backend config.EmbeddingBackend
	baseURL string
	apiKey  string
	model   string
	dim     int
}

func newHTTPEmbedder(cfg config.EmbeddingConfig) (*httpEmbedder, error) {
	const op = apperrors.Op("embeddings.newHTTPEmbedder")

	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Backend {
		case config.BackendOpenAI:
			baseURL = "https://api.openai.com/v1/embeddings"
		case config.BackendGemini:
			baseURL = "https://generativelanguage.googleapis.com/v1beta/models"
		default:
			return nil, apperrors.E(op, apperrors.KindValidation,
				apperrors.Errorf("backend %q requires base_url", cfg.Backend))
		}
	}

	var apiKey string
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
		if apiKey == "" {
			return nil, apperrors.E(op, apperrors.KindValidation,
				apperrors.Errorf("env var %q (api_key_env) is unset", cfg.APIKeyEnv))
		}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	model := cfg.DefaultModel
	if model == "" {
		model = "text-embedding-3-small"
	}

	return &httpEmbedder{
		client:  &http.Client{Timeout: timeout},
		backend: cfg.Backend,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		dim:     cfg.Dimensions,
	}, nil
}

func (e *httpEmbedder) Name() string   { return fmt.Sprintf("http:%s/%s", e.backend, e.model) }
func (e *httpEmbedder) Dimension() int { return e.dim }
func (e *httpEmbedder) Close() error   { return nil }

func (e *httpEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	const op = apperrors.Op("embeddings.httpEmbedder.EmbedBatch")
	if len(texts) == 0 {
		return nil, nil
	}

	switch e.backend {
	case config.BackendGemini:
		return e.embedGemini(ctx, op, texts)
	case config.BackendOllama:
		return e.embedOllama(ctx, op, texts)
	default: // OpenAI and any OpenAI-wire-compatible / local_service endpoint
		return e.embedOpenAICompatible(ctx, op, texts)
	}
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *httpEmbedder) embedOpenAICompatible(ctx context.Context, op apperrors.Op, texts []string) ([][]float32, error) {
	reqBody, err := json.Marshal(openAIEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, apperrors.E(op, apperrors.KindValidation, err)
	}

	var out openAIEmbedResponse
	if err := e.post(ctx, op, e.baseURL, reqBody, &out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, apperrors.E(op, apperrors.KindParse,
			apperrors.Errorf("expected %d embeddings, got %d", len(texts), len(out.Data)))
	}
	vecs := make([][]float32, len(out.Data))
	for i, d := range out.Data {
		vecs[i] = normalize(d.Embedding)
	}
	return vecs, nil
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (e *httpEmbedder) embedOllama(ctx context.Context, op apperrors.Op, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		reqBody, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Prompt: text})
		if err != nil {
			return nil, apperrors.E(op, apperrors.KindValidation, err)
		}
		var out ollamaEmbedResponse
		if err := e.post(ctx, op, e.baseURL, reqBody, &out); err != nil {
			return nil, err
		}
		vecs[i] = normalize(out.Embedding)
	}
	return vecs, nil
}

type geminiEmbedRequest struct {
	Content geminiContent `json:"content"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

func (e *httpEmbedder) embedGemini(ctx context.Context, op apperrors.Op, texts []string) ([][]float32, error) {
	url := fmt.Sprintf("%s/%s:embedContent?key=%s", e.baseURL, e.model, e.apiKey)
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		reqBody, err := json.Marshal(geminiEmbedRequest{Content: geminiContent{Parts: []geminiPart{{Text: text}}}})
		if err != nil {
			return nil, apperrors.E(op, apperrors.KindValidation, err)
		}
		var out geminiEmbedResponse
		if err := e.post(ctx, op, url, reqBody, &out); err != nil {
			return nil, err
		}
		vecs[i] = normalize(out.Embedding.Values)
	}
	return vecs, nil
}

func (e *httpEmbedder) post(ctx context.Context, op apperrors.Op, url string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.E(op, apperrors.KindValidation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" && e.backend != config.BackendGemini {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return apperrors.E(op, apperrors.KindTransientExternal, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.E(op, apperrors.KindTransientExternal, err)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.E(op, apperrors.KindTransientExternal,
			apperrors.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, string(respBody)))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.E(op, apperrors.KindParse, err)
	}
	return nil
}
