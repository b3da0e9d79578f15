package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiProviderGenerate(t *testing.T) {
	var got geminiEmbeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/text-embedding-004:embedContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.6,0.8]}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("key", "")
	p.BaseURL = srv.URL

	res, err := p.Generate(context.Background(), "hello", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, res.Embedding.Values)
	assert.Equal(t, "models/text-embedding-004", got.Model)
	assert.Equal(t, TaskRetrievalQuery, got.TaskType)
	assert.Equal(t, "hello", got.Content.Parts[0].Text)
}

func TestGeminiProviderBadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"API key not valid. Please pass a valid API key."}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("bad", "")
	p.BaseURL = srv.URL

	_, err := p.Generate(context.Background(), "hello", TaskRetrievalDocument)
	var perr *llm.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.6,0.8]}],"model":"text-embedding-3-small","usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("key", srv.URL+"/v1", "")

	res, err := p.Generate(context.Background(), "hello", TaskRetrievalQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, res.Embedding.Values)
	assert.Equal(t, "text-embedding-3-small", got["model"])
	assert.Equal(t, []interface{}{"hello"}, got["input"])
}

func TestOpenAIProviderBadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("bad", srv.URL, "").Generate(context.Background(), "hello", TaskRetrievalDocument)
	var perr *llm.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnauthorized, perr.StatusCode)
}

func TestOllamaProviderNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	res, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "x", "")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, res.Embedding.Values[0], 1e-6)
	assert.InDelta(t, 0.8, res.Embedding.Values[1], 1e-6)
}

func TestHashingProviderIsDeterministicAndUnitLength(t *testing.T) {
	p := NewHashingProvider(64)

	a, err := p.Generate(context.Background(), "กองทุนการออมแห่งชาติ savings fund", TaskRetrievalDocument)
	require.NoError(t, err)
	b, err := p.Generate(context.Background(), "กองทุนการออมแห่งชาติ savings fund", TaskRetrievalQuery)
	require.NoError(t, err)

	assert.Equal(t, a.Embedding.Values, b.Embedding.Values)
	require.Len(t, a.Embedding.Values, 64)

	var norm float64
	for _, v := range a.Embedding.Values {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

type countingProvider struct {
	errs  []error
	calls int
}

func (c *countingProvider) Generate(ctx context.Context, text, taskType string) (*EmbeddingResponse, error) {
	c.calls++
	if c.calls <= len(c.errs) {
		return nil, c.errs[c.calls-1]
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: []float32{1}}}, nil
}

func TestResilientProviderRetriesRateLimits(t *testing.T) {
	next := &countingProvider{errs: []error{&llm.ProviderError{Provider: "gemini", StatusCode: http.StatusTooManyRequests}}}
	p := NewResilientProvider(next, 0, llm.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond})

	res, err := p.Generate(context.Background(), "x", TaskRetrievalDocument)
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, res.Embedding.Values)
	assert.Equal(t, 2, next.calls)
}

func TestResilientProviderStopsOnAuthError(t *testing.T) {
	next := &countingProvider{errs: []error{&llm.ProviderError{Provider: "gemini", StatusCode: http.StatusForbidden}}}
	p := NewResilientProvider(next, 100, llm.RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond})

	_, err := p.Generate(context.Background(), "x", TaskRetrievalDocument)
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestNewEmbeddingProvider(t *testing.T) {
	_, err := NewEmbeddingProvider(Settings{Provider: "gemini"})
	assert.Error(t, err)

	p, err := NewEmbeddingProvider(Settings{Provider: "hashing"})
	require.NoError(t, err)
	assert.IsType(t, &HashingProvider{}, p)

	_, err = NewEmbeddingProvider(Settings{Provider: "word2vec"})
	assert.Error(t, err)
}
