package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "nomic-embed-text"
)

// OllamaProvider embeds with a local Ollama server. It needs no key.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL, model string, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}

	status, raw, err := postJSON(ctx, p.client, p.baseURL+"/api/embeddings", nil, map[string]string{
		"model":  p.model,
		"prompt": text,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &Error{Kind: KindStatus, StatusCode: status, Message: strings.TrimSpace(string(raw))}
	}

	var out struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Kind: KindMalformed, Message: "failed to decode response", Err: err}
	}
	if len(out.Embedding) == 0 {
		return nil, &Error{Kind: KindMalformed, Message: "response has no embedding"}
	}
	return unitLength(out.Embedding), nil
}

// unitLength converts to float32 scaled to length 1. Ollama models return
// raw vectors, while the OpenAI models already return normalized ones.
func unitLength(vec []float64) []float32 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(vec))
	for i, v := range vec {
		if norm == 0 {
			out[i] = float32(v)
			continue
		}
		out[i] = float32(v / norm)
	}
	return out
}
