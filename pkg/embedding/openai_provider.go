package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "text-embedding-3-small"
	DefaultTimeout       = 30 * time.Second
)

// OpenAIProvider talks to any endpoint speaking the OpenAI embeddings shape:
// {"input": text, "model": name} -> {"data": [{"embedding": [...]}]}.
type OpenAIProvider struct {
	keys    KeySource
	baseURL string
	model   string
	client  *http.Client
}

type openAIRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type openAIResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(keys KeySource, baseURL, model string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIProvider{
		keys:    keys,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := checkInput(text); err != nil {
		return nil, err
	}
	apiKey := ""
	if p.keys != nil {
		apiKey = p.keys.APIKey()
	}
	if apiKey == "" {
		return nil, ErrMissingCredentials
	}

	status, bodyBytes, err := postJSON(ctx, p.client, p.baseURL+"/embeddings",
		map[string]string{"Authorization": "Bearer " + apiKey},
		openAIRequest{Input: text, Model: p.model})
	if err != nil {
		return nil, err
	}

	var apiResp openAIResponse
	decodeErr := json.Unmarshal(bodyBytes, &apiResp)

	if status != http.StatusOK {
		msg := strings.TrimSpace(string(bodyBytes))
		if decodeErr == nil && apiResp.Error != nil {
			msg = apiResp.Error.Message
		}
		return nil, &Error{Kind: KindStatus, StatusCode: status, Message: msg}
	}
	if decodeErr != nil {
		return nil, &Error{Kind: KindMalformed, Message: "failed to decode response", Err: decodeErr}
	}
	if len(apiResp.Data) == 0 || len(apiResp.Data[0].Embedding) == 0 {
		return nil, &Error{Kind: KindMalformed, Message: "response has no embedding"}
	}

	return apiResp.Data[0].Embedding, nil
}
