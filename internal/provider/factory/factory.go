package factory

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Zenoooe/ai-crm/internal/config"
	"github.com/Zenoooe/ai-crm/internal/profile"
	"github.com/Zenoooe/ai-crm/internal/provider"
	geminiProvider "github.com/Zenoooe/ai-crm/internal/provider/gemini"
	openaiProvider "github.com/Zenoooe/ai-crm/internal/provider/openai"
)

const (
	defaultHTTPTimeout     = 150 * time.Second
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second

	defaultOpenAITimeout = 120 * time.Second
	defaultGeminiTimeout = 30 * time.Second
)

// Getenv looks up a credential by variable name. os.Getenv satisfies it.
type Getenv func(string) string

// BuildRegistry turns the model catalogue into an immutable registry. The
// shipped tuning for known ids is applied first and explicit overrides from
// the configuration win. Credentials are read once through getenv.
func BuildRegistry(cfg config.Config, getenv Getenv) (*provider.Registry, error) {
	if getenv == nil {
		return nil, errors.New("getenv must not be nil")
	}

	descriptors := make([]provider.Descriptor, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		d, err := descriptorFor(m, getenv)
		if err != nil {
			return nil, err
		}
		if !d.Configured() {
			slog.Warn("model has no credential and will be unavailable", "model", d.ID, "env", m.APIKeyEnv)
		}
		descriptors = append(descriptors, d)
	}

	registry, err := provider.NewRegistry(cfg.DefaultModel, descriptors...)
	if err != nil {
		return nil, fmt.Errorf("build model registry: %w", err)
	}
	return registry, nil
}

func descriptorFor(m config.ModelConfig, getenv Getenv) (provider.Descriptor, error) {
	family, err := provider.ParseFamily(m.Family)
	if err != nil {
		return provider.Descriptor{}, fmt.Errorf("model %s: %w", m.ID, err)
	}

	d := provider.Descriptor{
		ID:          m.ID,
		Description: m.Description,
		Model:       m.Model,
		BaseURL:     m.BaseURL,
		APIKey:      strings.TrimSpace(getenv(m.APIKeyEnv)),
		Family:      family,
		Timeout:     time.Duration(m.TimeoutSeconds) * time.Second,
	}

	if p, ok := profile.Builtin(m.ID); ok {
		d.Temperature = p.Temperature
		d.MaxTokens = p.MaxTokens
		d.Style = p.Style
		if d.Description == "" {
			d.Description = p.Summary
		}
	}
	if m.Temperature != nil {
		d.Temperature = *m.Temperature
	}
	if m.MaxTokens != nil {
		d.MaxTokens = *m.MaxTokens
	}

	if d.Timeout <= 0 {
		d.Timeout = defaultOpenAITimeout
		if family == provider.FamilyGemini {
			d.Timeout = defaultGeminiTimeout
		}
	}
	return d, nil
}

// NewAdapters constructs one adapter per wire family, each with its own
// pooled HTTP client.
func NewAdapters() (map[provider.Family]provider.Adapter, error) {
	openAIAdapter, err := openaiProvider.New(newHTTPClient(defaultHTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("initialise openai adapter: %w", err)
	}

	geminiAdapter, err := geminiProvider.New(newHTTPClient(defaultHTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("initialise gemini adapter: %w", err)
	}

	return map[provider.Family]provider.Adapter{
		provider.FamilyOpenAI: openAIAdapter,
		provider.FamilyGemini: geminiAdapter,
	}, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
