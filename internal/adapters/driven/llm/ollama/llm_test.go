package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultLLMTimeout, svc.client.Timeout)
}

func TestLLMService_Generate(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "  We build chatbots.\n"},
			Done:    true,
		})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL + "/", Model: "llama3.2"})
	history := []domain.Entry{
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleAssistant, Text: "hello"},
	}

	reply, err := svc.Generate(context.Background(), "PROMPT", []string{"doc"}, history,
		driven.GenerateOptions{MaxTokens: 200, Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, "We build chatbots.", reply)
	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, chatMessage{Role: "user", Content: "PROMPT"}, got.Messages[3])
	require.NotNil(t, got.Options)
	assert.Equal(t, 200, got.Options.NumPredict)
	assert.InDelta(t, 0.2, got.Options.Temperature, 1e-9)
}

func TestLLMService_Generate_OmitsZeroOptions(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{Content: "ok"}})
	}))
	defer server.Close()

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	_, err := svc.Generate(context.Background(), "p", nil, nil, driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Nil(t, got.Options)
	assert.Len(t, got.Messages, 1)
}

func TestLLMService_Generate_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
			Generate(context.Background(), "p", nil, nil, driven.GenerateOptions{})
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(chatResponse{Error: "out of memory"})
		}))
		defer server.Close()

		_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
			Generate(context.Background(), "p", nil, nil, driven.GenerateOptions{})
		assert.EqualError(t, err, "ollama: out of memory")
	})

	t.Run("cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLLMService(LLMConfig{BaseURL: server.URL}).
			Generate(ctx, "p", nil, nil, driven.GenerateOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLLMService_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	assert.NoError(t, NewLLMService(LLMConfig{BaseURL: server.URL}).Ping(context.Background()))

	server.Close()
	assert.Error(t, NewLLMService(LLMConfig{BaseURL: server.URL}).Ping(context.Background()))
}
