package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zenoooe/ai-crm/internal/metrics"
	"github.com/Zenoooe/ai-crm/internal/models"
	"github.com/Zenoooe/ai-crm/internal/profile"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

const listModelsTimeout = 15 * time.Second

// Router resolves a caller's model name, applies the model's tuned
// parameters and dispatches the generation to the adapter for its wire
// family. Calls are independent; nothing is retried or cached.
type Router struct {
	registry *provider.Registry
	resolver *provider.Resolver
	selector *profile.Selector
	adapters map[provider.Family]provider.Adapter
	metrics  *metrics.Metrics
}

// New constructs a router. m may be nil.
func New(registry *provider.Registry, resolver *provider.Resolver, adapters map[provider.Family]provider.Adapter, m *metrics.Metrics) (*Router, error) {
	if registry == nil {
		return nil, errors.New("registry must not be nil")
	}
	if resolver == nil {
		return nil, errors.New("resolver must not be nil")
	}
	if len(adapters) == 0 {
		return nil, errors.New("at least one adapter is required")
	}

	return &Router{
		registry: registry,
		resolver: resolver,
		selector: profile.NewSelector(registry),
		adapters: adapters,
		metrics:  m,
	}, nil
}

// Registry returns the registry the router dispatches against.
func (r *Router) Registry() *provider.Registry {
	return r.registry
}

// Selector returns the profile selector bound to the router's registry.
func (r *Router) Selector() *profile.Selector {
	return r.selector
}

// Describe resolves a caller-supplied name to its descriptor. An empty name
// selects the default model.
func (r *Router) Describe(raw string) (provider.Descriptor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return r.registry.Default()
	}
	return r.registry.Lookup(r.resolver.Resolve(raw))
}

// Invoke performs one generation. It never returns a Go error: every
// outcome is a models.Success or models.Failure. The request's temperature
// and token limit are replaced by the model's tuned profile when it has one.
func (r *Router) Invoke(ctx context.Context, req models.GenerationRequest) models.Result {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	d, err := r.Describe(req.Model)
	if err != nil {
		return r.reject(req, "unresolved", err.Error())
	}
	if !d.Configured() {
		return r.reject(req, d.ID, fmt.Sprintf("model %s has no configured credential", d.ID))
	}

	adapter, ok := r.adapters[d.Family]
	if !ok {
		return r.reject(req, d.ID, fmt.Sprintf("no adapter for wire family %q", d.Family))
	}

	p := r.selector.Profile(d.ID, req.Temperature, req.MaxTokens)
	req.Temperature = p.Temperature
	req.MaxTokens = p.MaxTokens
	req.Model = d.Model

	callCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	start := time.Now()
	result := adapter.Generate(callCtx, d, req)
	if s, ok := result.(models.Success); ok && strings.TrimSpace(s.Content) == "" {
		result = models.NewFailure(models.FailureMalformedResponse, "provider returned empty content")
	}
	latency := time.Since(start)

	outcome := outcomeOf(result)
	r.metrics.ObserveGeneration(d.ID, string(d.Family), outcome, latency)

	attrs := []any{
		"request_id", req.ID,
		"model", d.ID,
		"family", d.Family,
		"latency_ms", latency.Milliseconds(),
		"outcome", outcome,
	}
	switch res := result.(type) {
	case models.Success:
		if res.Usage != nil {
			attrs = append(attrs, "total_tokens", res.Usage.TotalTokens)
		}
		slog.Info("generation completed", attrs...)
	case models.Failure:
		if res.Status != 0 {
			attrs = append(attrs, "status", res.Status)
		}
		slog.Error("generation failed", append(attrs, "error", res.Message)...)
	}

	return result
}

// reject fails a request before any network call. label keeps caller-chosen
// names out of metric labels.
func (r *Router) reject(req models.GenerationRequest, label, message string) models.Result {
	failure := models.NewFailure(models.FailureConfiguration, message)
	r.metrics.ObserveGeneration(label, "", outcomeOf(failure), 0)
	slog.Error("generation rejected",
		"request_id", req.ID,
		"model", req.Model,
		"outcome", failure.Kind.String(),
		"error", failure.Message,
	)
	return failure
}

// ListUpstreamModels asks the provider behind id which models it serves. It
// doubles as a connection test for the configured credential.
func (r *Router) ListUpstreamModels(ctx context.Context, id string) ([]string, error) {
	d, err := r.Describe(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	if !d.Configured() {
		return nil, fmt.Errorf("%w: model %s has no configured credential", models.ErrConfiguration, d.ID)
	}

	adapter, ok := r.adapters[d.Family]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter for wire family %q", models.ErrConfiguration, d.Family)
	}

	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	names, err := adapter.ListModels(ctx, d)
	if err != nil {
		slog.Warn("upstream model listing failed", "model", d.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	return names, nil
}

func outcomeOf(result models.Result) string {
	if f, ok := result.(models.Failure); ok {
		return f.Kind.String()
	}
	return "success"
}
