package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/adapters/driven/llm"
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.EqualError(t, err, "anthropic: API key is required")

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: "http://example.test/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, "http://example.test", svc.baseURL)
}

func TestLLMService_Generate(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there."}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := svc.Generate(context.Background(), "PROMPT", []string{"company doc"},
		[]domain.Entry{{Role: domain.RoleUser, Text: "hi"}, {Role: domain.RoleAssistant, Text: "hello"}},
		driven.GenerateOptions{Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, "Hello there.", reply)
	assert.Contains(t, got.System, "company doc")
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "PROMPT", got.Messages[2].Content)
}

func TestLLMService_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "p", nil, nil, driven.GenerateOptions{})
	assert.EqualError(t, err, "anthropic: bad model")
}

func TestLLMService_Generate_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "p", nil, nil, driven.GenerateOptions{})
	assert.EqualError(t, err, "anthropic: no response content returned")
}

func TestAlternate(t *testing.T) {
	msgs := []llm.Message{
		{Role: llm.RoleAssistant, Content: "Welcome!"},
		{Role: llm.RoleUser, Content: "a"},
		{Role: llm.RoleUser, Content: "b"},
		{Role: llm.RoleAssistant, Content: "c"},
	}

	assert.Equal(t, []messagesMessage{
		{Role: llm.RoleUser, Content: "a\n\nb"},
		{Role: llm.RoleAssistant, Content: "c"},
	}, alternate(msgs))
}

func TestLLMService_Ping(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(status)
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	assert.NoError(t, svc.Ping(context.Background()))

	status = http.StatusUnauthorized
	assert.ErrorContains(t, svc.Ping(context.Background()), "status 401")
}
