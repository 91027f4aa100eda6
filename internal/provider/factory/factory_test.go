package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/config"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

func envOf(values map[string]string) Getenv {
	return func(name string) string { return values[name] }
}

func TestBuildRegistryFromDefaults(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	registry, err := BuildRegistry(cfg, envOf(map[string]string{
		"DEEPSEEK_API_KEY": " ds-key ",
		"GOOGLE_API_KEY":   "g-key",
	}))
	require.NoError(t, err)

	reasoner, err := registry.Lookup("deepseek-reasoner")
	require.NoError(t, err)
	assert.Equal(t, "ds-key", reasoner.APIKey)
	assert.Equal(t, 0.3, reasoner.Temperature)
	assert.Equal(t, 12000, reasoner.MaxTokens)
	assert.Contains(t, reasoner.Style, "深度逻辑分析")
	assert.Equal(t, 120*time.Second, reasoner.Timeout)

	gemini, err := registry.Lookup("gemini-pro")
	require.NoError(t, err)
	assert.Equal(t, provider.FamilyGemini, gemini.Family)
	assert.Equal(t, 30*time.Second, gemini.Timeout)

	kimi, err := registry.Lookup("moonshot-kimi-k2")
	require.NoError(t, err)
	assert.Equal(t, "moonshot-v1-128k", kimi.Model)
	assert.False(t, kimi.Configured())

	d, err := registry.Default()
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", d.ID)
}

func TestBuildRegistryOverrides(t *testing.T) {
	temp := 0.1
	maxTokens := 2048
	cfg := config.Config{
		Models: []config.ModelConfig{
			{ID: "grok-4", BaseURL: "https://api.x.ai/v1", Family: "openai", APIKeyEnv: "XAI_API_KEY", Temperature: &temp, MaxTokens: &maxTokens, TimeoutSeconds: 5},
			{ID: "local", BaseURL: "http://localhost:8000/v1", Family: "openai", APIKeyEnv: "LOCAL_KEY"},
		},
	}

	registry, err := BuildRegistry(cfg, envOf(map[string]string{"LOCAL_KEY": "x"}))
	require.NoError(t, err)

	grok, err := registry.Lookup("grok-4")
	require.NoError(t, err)
	assert.Equal(t, 0.1, grok.Temperature)
	assert.Equal(t, 2048, grok.MaxTokens)
	assert.NotEmpty(t, grok.Style)
	assert.Equal(t, 5*time.Second, grok.Timeout)

	local, err := registry.Lookup("local")
	require.NoError(t, err)
	assert.Equal(t, "local", local.Model)
	assert.Zero(t, local.MaxTokens)
	assert.Empty(t, local.Style)
}

func TestBuildRegistryRejectsBadFamily(t *testing.T) {
	cfg := config.Config{Models: []config.ModelConfig{{ID: "x", BaseURL: "https://x", Family: "claude"}}}

	_, err := BuildRegistry(cfg, envOf(nil))

	assert.ErrorContains(t, err, "model x")
}

func TestNewAdapters(t *testing.T) {
	adapters, err := NewAdapters()
	require.NoError(t, err)

	require.Len(t, adapters, 2)
	assert.Equal(t, provider.FamilyOpenAI, adapters[provider.FamilyOpenAI].Family())
	assert.Equal(t, provider.FamilyGemini, adapters[provider.FamilyGemini].Family())
}
