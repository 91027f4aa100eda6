package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/provider"
)

var builtinIDs = []string{"deepseek-chat", "deepseek-reasoner", "moonshot-kimi-k2", "openai-gpt4", "gemini-pro", "grok-4"}

func newSelector(t *testing.T) *Selector {
	t.Helper()

	var descriptors []provider.Descriptor
	for _, id := range builtinIDs {
		p, ok := Builtin(id)
		require.True(t, ok, id)
		descriptors = append(descriptors, provider.Descriptor{
			ID:          id,
			BaseURL:     "https://example.invalid/v1",
			Family:      provider.FamilyOpenAI,
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
			Style:       p.Style,
			Description: p.Summary,
		})
	}
	descriptors = append(descriptors, provider.Descriptor{
		ID:      "untuned",
		BaseURL: "https://example.invalid/v1",
		Family:  provider.FamilyOpenAI,
	})

	registry, err := provider.NewRegistry("", descriptors...)
	require.NoError(t, err)
	return NewSelector(registry)
}

func TestProfileKnownModelsAreWithinBounds(t *testing.T) {
	s := newSelector(t)

	for _, id := range builtinIDs {
		p := s.Profile(id, 0.5, 100)

		assert.GreaterOrEqual(t, p.Temperature, 0.0, id)
		assert.LessOrEqual(t, p.Temperature, 2.0, id)
		assert.Greater(t, p.MaxTokens, 0, id)
		assert.NotEmpty(t, p.Style, id)
	}
}

func TestProfileTunedValues(t *testing.T) {
	s := newSelector(t)

	tests := []struct {
		id          string
		temperature float64
		maxTokens   int
	}{
		{"deepseek-chat", 0.7, 8192},
		{"deepseek-reasoner", 0.3, 12000},
		{"moonshot-kimi-k2", 0.8, 16000},
		{"openai-gpt4", 0.7, 10000},
		{"gemini-pro", 0.9, 12000},
		{"grok-4", 1.0, 14000},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p := s.Profile(tt.id, 0.1, 1)

			assert.Equal(t, tt.temperature, p.Temperature)
			assert.Equal(t, tt.maxTokens, p.MaxTokens)
		})
	}
}

func TestProfileUnknownModelKeepsCallerValues(t *testing.T) {
	s := newSelector(t)

	for _, id := range []string{"untuned", "not-registered"} {
		p := s.Profile(id, 0.42, 777)

		assert.Equal(t, 0.42, p.Temperature, id)
		assert.Equal(t, 777, p.MaxTokens, id)
		assert.Empty(t, p.Style, id)
	}
}

func TestStyle(t *testing.T) {
	s := newSelector(t)

	assert.Contains(t, s.Style("deepseek-reasoner"), "深度逻辑分析")
	assert.Empty(t, s.Style("untuned"))
	assert.Empty(t, s.Style("not-registered"))
}
