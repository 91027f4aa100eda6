package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New(http.DefaultClient)
	require.NoError(t, err)
	return a
}

func descriptorFor(url string) provider.Descriptor {
	return provider.Descriptor{
		ID:      "moonshot-kimi-k2",
		Model:   "moonshot-v1-128k",
		BaseURL: url + "/v1/",
		APIKey:  "sk-test",
		Family:  provider.FamilyOpenAI,
	}
}

func TestGenerateSuccess(t *testing.T) {
	var got chatPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"你好"}}],"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
	}))
	defer server.Close()

	result := newAdapter(t).Generate(context.Background(), descriptorFor(server.URL), models.GenerationRequest{
		Messages:    []models.Message{{Role: models.RoleSystem, Content: "sys"}, {Role: models.RoleUser, Content: "hi"}},
		Temperature: 0.8,
		MaxTokens:   16000,
	})

	success, ok := result.(models.Success)
	require.True(t, ok, "%#v", result)
	assert.Equal(t, "你好", success.Content)
	assert.Equal(t, "moonshot-v1-128k", success.Model)
	require.NotNil(t, success.Usage)
	assert.Equal(t, 5, success.Usage.TotalTokens)

	assert.Equal(t, "moonshot-v1-128k", got.Model)
	assert.Equal(t, 0.8, got.Temperature)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, 16000, *got.MaxTokens)
	assert.Equal(t, []openAIMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}}, got.Messages)
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   models.FailureKind
		text   string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":{"message":"bad key","type":"auth"}}`, kind: models.FailureTransport, text: "bad key"},
		{name: "plain error body", status: http.StatusBadGateway, body: "upstream down", kind: models.FailureTransport, text: "upstream down"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, kind: models.FailureMalformedResponse, text: "choices"},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, kind: models.FailureMalformedResponse, text: "empty"},
		{name: "invalid json", status: http.StatusOK, body: `{"choices":`, kind: models.FailureMalformedResponse, text: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result := newAdapter(t).Generate(context.Background(), descriptorFor(server.URL), models.GenerationRequest{
				Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
			})

			failure, ok := result.(models.Failure)
			require.True(t, ok, "%#v", result)
			assert.Equal(t, tt.kind, failure.Kind)
			assert.Contains(t, failure.Message, tt.text)
			if tt.status != http.StatusOK {
				assert.Equal(t, tt.status, failure.Status)
			}
		})
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	result := newAdapter(t).Generate(context.Background(), descriptorFor(url), models.GenerationRequest{
		Messages: []models.Message{{Role: models.RoleUser, Content: "hi"}},
	})

	failure, ok := result.(models.Failure)
	require.True(t, ok)
	assert.ErrorIs(t, failure, models.ErrTransport)
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/models", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"id":"moonshot-v1-8k"},{"id":""},{"id":"moonshot-v1-128k"}]}`))
	}))
	defer server.Close()

	ids, err := newAdapter(t).ListModels(context.Background(), descriptorFor(server.URL))

	require.NoError(t, err)
	assert.Equal(t, []string{"moonshot-v1-8k", "moonshot-v1-128k"}, ids)
}

func TestListModelsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"forbidden"}}`))
	}))
	defer server.Close()

	_, err := newAdapter(t).ListModels(context.Background(), descriptorFor(server.URL))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
