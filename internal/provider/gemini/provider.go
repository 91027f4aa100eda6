package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

const (
	contentTypeJSON = "application/json"
	userAgent       = "ai-crm/0.1"
	maxErrorBody    = 64 * 1024
	modelPrefix     = "models/"
)

// Adapter talks to the Google Generative Language API.
type Adapter struct {
	client *http.Client
}

// New creates a Gemini adapter.
func New(client *http.Client) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	return &Adapter{client: client}, nil
}

func (a *Adapter) Family() provider.Family {
	return provider.FamilyGemini
}

// Generate posts to {base}/models/{model}:generateContent. The API has no
// system role, so system text is folded into the first user turn.
func (a *Adapter) Generate(ctx context.Context, d provider.Descriptor, req models.GenerationRequest) models.Result {
	payload := buildGenerateRequest(req)

	target := endpoint(d.BaseURL, "/models/"+url.PathEscape(d.Model)+":generateContent", d.APIKey)
	httpReq, err := newRequest(ctx, http.MethodPost, target, payload)
	if err != nil {
		return models.NewFailure(models.FailureTransport, redact(err.Error(), d.APIKey))
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return models.NewFailure(models.FailureTransport, fmt.Sprintf("gemini generate request failed: %s", redact(err.Error(), d.APIKey)))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		f := models.NewFailure(models.FailureTransport, parseAPIError(httpResp).Error())
		f.Status = httpResp.StatusCode
		return f
	}

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return models.NewFailure(models.FailureMalformedResponse, fmt.Sprintf("decode provider response: %v", err))
	}

	return resp.toResult(d.Model)
}

// ListModels returns the model names served by {base}/models without their
// "models/" prefix.
func (a *Adapter) ListModels(ctx context.Context, d provider.Descriptor) ([]string, error) {
	httpReq, err := newRequest(ctx, http.MethodGet, endpoint(d.BaseURL, "/models", d.APIKey), nil)
	if err != nil {
		return nil, errors.New(redact(err.Error(), d.APIKey))
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini list models request failed: %s", redact(err.Error(), d.APIKey))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAPIError(httpResp)
	}

	var list modelList
	if err := json.NewDecoder(httpResp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if name := strings.TrimPrefix(m.Name, modelPrefix); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func newRequest(ctx context.Context, method, target string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func endpoint(base, path, apiKey string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base + path + "?" + url.Values{"key": {apiKey}}.Encode()
}

// redact keeps the credential, which travels in the query string, out of
// error text.
func redact(s, apiKey string) string {
	if apiKey == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(apiKey), "REDACTED")
	return strings.ReplaceAll(s, apiKey, "REDACTED")
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

func buildGenerateRequest(req models.GenerationRequest) generateRequest {
	var system []string
	contents := make([]content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case models.RoleSystem:
			system = append(system, msg.Content)
		case models.RoleAssistant:
			contents = append(contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})
		}
	}

	if len(system) > 0 {
		prefix := strings.Join(system, "\n\n")
		merged := false
		for i := range contents {
			if contents[i].Role == "user" {
				contents[i].Parts[0].Text = prefix + "\n\n" + contents[i].Parts[0].Text
				merged = true
				break
			}
		}
		if !merged {
			contents = append([]content{{Role: "user", Parts: []part{{Text: prefix}}}}, contents...)
		}
	}

	temperature := req.Temperature
	cfg := &generationConfig{Temperature: &temperature}
	if req.MaxTokens > 0 {
		v := req.MaxTokens
		cfg.MaxOutputTokens = &v
	}
	return generateRequest{Contents: contents, GenerationConfig: cfg}
}

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func (r generateResponse) toResult(requestedModel string) models.Result {
	if len(r.Candidates) == 0 {
		return models.NewFailure(models.FailureMalformedResponse, "gemini response did not include candidates")
	}

	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return models.NewFailure(models.FailureMalformedResponse, "gemini candidate had no text")
	}

	model := r.ModelVersion
	if model == "" {
		model = requestedModel
	}

	var usage *models.Usage
	if u := r.UsageMetadata; u != nil {
		usage = &models.Usage{
			PromptTokens:     u.PromptTokenCount,
			CompletionTokens: u.CandidatesTokenCount,
			TotalTokens:      u.TotalTokenCount,
		}
	}
	return models.Success{Content: text, Usage: usage, Model: model}
}

type modelList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("upstream error status %d and failed to read body: %w", resp.StatusCode, err)
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("upstream error status %d (%s): %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
	}

	return fmt.Errorf("upstream error status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
