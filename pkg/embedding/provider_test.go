package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Embed(t *testing.T) {
	var gotAuth string
	var gotBody openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(StaticKey("secret"), server.URL, "test-model", 0)
	vec, err := p.Embed(context.Background(), "blue sunglasses")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "blue sunglasses", gotBody.Input)
	assert.Equal(t, "test-model", gotBody.Model)
}

func TestOpenAIProvider_Failures(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		text     string
		status   int
		body     string
		wantKind ErrorKind
	}{
		{name: "empty input", key: "k", text: "   ", wantKind: KindEmptyInput},
		{name: "missing key", key: "", text: "hello", wantKind: KindMissingCredentials},
		{name: "non-200", key: "k", text: "hello", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key"}}`, wantKind: KindStatus},
		{name: "missing vector", key: "k", text: "hello", status: http.StatusOK, body: `{"data":[]}`, wantKind: KindMalformed},
		{name: "garbage body", key: "k", text: "hello", status: http.StatusOK, body: `not json`, wantKind: KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewOpenAIProvider(StaticKey(tt.key), server.URL, "", 0)
			_, err := p.Embed(context.Background(), tt.text)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			if tt.wantKind == KindEmptyInput || tt.wantKind == KindMissingCredentials {
				assert.Zero(t, calls, "no request should be sent")
			}
		})
	}
}

func TestOpenAIProvider_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	p := NewOpenAIProvider(StaticKey("k"), url, "", 0)
	_, err := p.Embed(context.Background(), "hello")

	var embErr *Error
	require.True(t, errors.As(err, &embErr))
	assert.Equal(t, KindTransport, embErr.Kind)
	assert.True(t, embErr.Retryable())
}

func TestEmptyInputIsSentinel(t *testing.T) {
	p := NewOllamaProvider("http://127.0.0.1:0", "", 0)
	_, err := p.Embed(context.Background(), "")
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestOllamaProvider_NormalizesVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text", 0)
	vec, err := p.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, (&Error{Kind: KindStatus, StatusCode: 503}).Retryable())
	assert.True(t, (&Error{Kind: KindStatus, StatusCode: 429}).Retryable())
	assert.False(t, (&Error{Kind: KindStatus, StatusCode: 401}).Retryable())
	assert.False(t, ErrEmptyInput.Retryable())
}
