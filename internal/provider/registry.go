package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zenoooe/ai-crm/internal/models"
)

// ErrUnknownModel indicates the requested model is not registered.
var ErrUnknownModel = errors.New("unknown model")

// ErrDuplicateModel indicates an attempt to register the same model twice.
var ErrDuplicateModel = errors.New("model already registered")

// ErrNoConfiguredModel indicates no registered model has a credential.
var ErrNoConfiguredModel = errors.New("no model has a configured credential")

// Family is the wire protocol a provider's HTTP API follows.
type Family string

const (
	FamilyOpenAI Family = "openai"
	FamilyGemini Family = "gemini"
)

// ParseFamily maps a configuration string onto a known Family.
func ParseFamily(s string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(s))) {
	case FamilyOpenAI:
		return FamilyOpenAI, nil
	case FamilyGemini:
		return FamilyGemini, nil
	default:
		return "", fmt.Errorf("wire family %q must be one of %q or %q", s, FamilyOpenAI, FamilyGemini)
	}
}

// Descriptor describes one supported model configuration. Descriptors are
// values; the registry hands out copies.
type Descriptor struct {
	ID          string
	Description string
	// Model is the upstream model name sent on the wire.
	Model       string
	BaseURL     string
	APIKey      string
	Family      Family
	Temperature float64
	MaxTokens   int
	Style       string
	Timeout     time.Duration
}

// Configured reports whether a credential is present.
func (d Descriptor) Configured() bool {
	return strings.TrimSpace(d.APIKey) != ""
}

// Adapter performs generations for one wire family.
type Adapter interface {
	Family() Family
	Generate(ctx context.Context, d Descriptor, req models.GenerationRequest) models.Result
	ListModels(ctx context.Context, d Descriptor) ([]string, error)
}

// Registry maps canonical model ids to descriptors. It is built once at
// startup and never mutated afterwards, so it needs no locking.
type Registry struct {
	order     []string
	byID      map[string]Descriptor
	defaultID string
}

// NewRegistry validates and indexes the descriptors. defaultID may be empty.
func NewRegistry(defaultID string, descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(descriptors)),
		byID:  make(map[string]Descriptor, len(descriptors)),
	}

	for _, d := range descriptors {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return nil, errors.New("model id must not be empty")
		}
		if _, err := ParseFamily(string(d.Family)); err != nil {
			return nil, fmt.Errorf("model %s: %w", d.ID, err)
		}
		if strings.TrimSpace(d.BaseURL) == "" {
			return nil, fmt.Errorf("model %s: base url must not be empty", d.ID)
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModel, d.ID)
		}
		if d.Model == "" {
			d.Model = d.ID
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}

	defaultID = strings.TrimSpace(defaultID)
	if defaultID != "" {
		if _, ok := r.byID[defaultID]; !ok {
			return nil, fmt.Errorf("default model %q: %w", defaultID, ErrUnknownModel)
		}
	}
	r.defaultID = defaultID

	return r, nil
}

// Lookup returns the descriptor for a canonical model id.
func (r *Registry) Lookup(id string) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return d, nil
}

// Default returns the preferred default model when it has a credential,
// otherwise the first configured model in registration order. Models
// without a credential are never chosen.
func (r *Registry) Default() (Descriptor, error) {
	if d, ok := r.byID[r.defaultID]; ok && d.Configured() {
		return d, nil
	}
	for _, id := range r.order {
		if d := r.byID[id]; d.Configured() {
			return d, nil
		}
	}
	return Descriptor{}, ErrNoConfiguredModel
}

// Models returns every descriptor in registration order.
func (r *Registry) Models() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
