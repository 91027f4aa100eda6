package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/normalize"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 150*time.Second, cfg.Server.WriteTimeout())
	assert.Equal(t, "deepseek-chat", cfg.DefaultModel)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, normalize.DefaultConfidencePolicy(), cfg.Confidence.Policy())

	var ids []string
	for _, m := range cfg.Models {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"deepseek-chat", "deepseek-reasoner", "moonshot-kimi-k2", "openai-gpt4", "gemini-pro", "grok-4"}, ids)
	assert.Equal(t, "moonshot-kimi-k2", cfg.Aliases["moonshot:moonshot-v1-8k"])
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
default_model: local
models:
  - id: local
    model: qwen2
    base_url: http://localhost:11434/v1
    family: openai
    api_key_env: LOCAL_KEY
    temperature: 0.2
aliases:
  "ollama:qwen2": local
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ReadTimeoutSeconds)
	require.Len(t, cfg.Models, 1)
	require.NotNil(t, cfg.Models[0].Temperature)
	assert.Equal(t, 0.2, *cfg.Models[0].Temperature)
	assert.Equal(t, "local", cfg.Aliases["ollama:qwen2"])
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.ErrorContains(t, err, "read config file")
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Len(t, cfg.Models, 6)
}

func TestValidate(t *testing.T) {
	temp := 3.0
	zero := 0

	tests := []struct {
		name   string
		mutate func(*Config)
		text   string
	}{
		{name: "port", mutate: func(c *Config) { c.Server.Port = 0 }, text: "server.port"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "trace" }, text: "logging.level"},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, text: "logging.format"},
		{name: "driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, text: "database.driver"},
		{name: "mysql without dsn env", mutate: func(c *Config) { c.Database.Driver = DriverMySQL; c.Database.DSNEnv = "" }, text: "dsn_env"},
		{name: "no models", mutate: func(c *Config) { c.Models = nil; c.Aliases = nil; c.DefaultModel = "" }, text: "at least one model"},
		{name: "family", mutate: func(c *Config) { c.Models[0].Family = "claude" }, text: "wire family"},
		{name: "key env", mutate: func(c *Config) { c.Models[0].APIKeyEnv = "1BAD" }, text: "api_key_env"},
		{name: "duplicate", mutate: func(c *Config) { c.Models[1].ID = c.Models[0].ID }, text: "configured twice"},
		{name: "temperature", mutate: func(c *Config) { c.Models[0].Temperature = &temp }, text: "temperature"},
		{name: "max tokens", mutate: func(c *Config) { c.Models[0].MaxTokens = &zero }, text: "max_tokens"},
		{name: "default model", mutate: func(c *Config) { c.DefaultModel = "missing" }, text: "default_model"},
		{name: "alias target", mutate: func(c *Config) { c.Aliases["x:y"] = "missing" }, text: "unknown model"},
		{name: "confidence range", mutate: func(c *Config) { c.Confidence.CapTo = 1.5 }, text: "confidence.cap_to"},
		{name: "confidence order", mutate: func(c *Config) { c.Confidence.FloorBelow = 0.9 }, text: "floor_below"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)

			tt.mutate(&cfg)

			assert.ErrorContains(t, cfg.Validate(), tt.text)
		})
	}
}

func TestDatabaseDSNFromEnv(t *testing.T) {
	t.Setenv("TEST_CRM_DSN", " user:pw@tcp(db:3306)/crm ")

	assert.Equal(t, "user:pw@tcp(db:3306)/crm", DatabaseConfig{DSNEnv: "TEST_CRM_DSN"}.DSN())
}
