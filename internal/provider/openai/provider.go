package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "ai-crm/0.1"
	maxErrorBody    = 64 * 1024
)

// Adapter talks to OpenAI-compatible chat completion APIs. The endpoint,
// credential and upstream model come from the descriptor of each call.
type Adapter struct {
	client *http.Client
}

// New creates an OpenAI-compatible adapter.
func New(client *http.Client) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	return &Adapter{client: client}, nil
}

func (a *Adapter) Family() provider.Family {
	return provider.FamilyOpenAI
}

// Generate posts the messages to {base}/chat/completions. Every outcome is
// returned as a models.Result.
func (a *Adapter) Generate(ctx context.Context, d provider.Descriptor, req models.GenerationRequest) models.Result {
	payload := buildChatPayload(d, req)

	httpReq, err := a.newRequest(ctx, http.MethodPost, endpoint(d.BaseURL, "/chat/completions"), d.APIKey, payload)
	if err != nil {
		return models.NewFailure(models.FailureTransport, err.Error())
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return models.NewFailure(models.FailureTransport, fmt.Sprintf("openai chat request failed: %v", err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		f := models.NewFailure(models.FailureTransport, parseAPIError(httpResp).Error())
		f.Status = httpResp.StatusCode
		return f
	}

	var providerResp chatResponse
	if err := decodeJSON(httpResp.Body, &providerResp); err != nil {
		return models.NewFailure(models.FailureMalformedResponse, err.Error())
	}

	return providerResp.toResult(d.Model)
}

// ListModels returns the ids served by {base}/models.
func (a *Adapter) ListModels(ctx context.Context, d provider.Descriptor) ([]string, error) {
	httpReq, err := a.newRequest(ctx, http.MethodGet, endpoint(d.BaseURL, "/models"), d.APIKey, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai list models request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAPIError(httpResp)
	}

	var list modelList
	if err := decodeJSON(httpResp.Body, &list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (a *Adapter) newRequest(ctx context.Context, method, url, apiKey string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+apiKey)

	return req, nil
}

func endpoint(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

type chatPayload struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func buildChatPayload(d provider.Descriptor, req models.GenerationRequest) chatPayload {
	messages := make([]openAIMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openAIMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	payload := chatPayload{
		Model:       d.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		v := req.MaxTokens
		payload.MaxTokens = &v
	}
	return payload
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *usageBlock  `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type usageBlock struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (r chatResponse) toResult(requestedModel string) models.Result {
	if len(r.Choices) == 0 {
		return models.NewFailure(models.FailureMalformedResponse, "openai response did not include choices")
	}

	content := r.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return models.NewFailure(models.FailureMalformedResponse, "openai response had empty message content")
	}

	model := r.Model
	if model == "" {
		model = requestedModel
	}

	var usage *models.Usage
	if r.Usage != nil {
		usage = &models.Usage{
			PromptTokens:     valueOrZero(r.Usage, func(u *usageBlock) int { return u.PromptTokens }),
			CompletionTokens: valueOrZero(r.Usage, func(u *usageBlock) int { return u.CompletionTokens }),
			TotalTokens:      valueOrZero(r.Usage, func(u *usageBlock) int { return u.TotalTokens }),
		}
	}

	return models.Success{Content: content, Usage: usage, Model: model}
}

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type apiErrorResponse struct {
	Error apiErrorObject `json:"error"`
}

type apiErrorObject struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("upstream error status %d and failed to read body: %w", resp.StatusCode, err)
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("upstream error status %d (%s): %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
	}

	return fmt.Errorf("upstream error status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func decodeJSON(reader io.Reader, target any) error {
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

func valueOrZero[T any, R any](ptr *T, getter func(*T) R) R {
	var zero R
	if ptr == nil {
		return zero
	}
	return getter(ptr)
}
