package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zenoooe/ai-crm/internal/config"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

func TestExecuteUnknownCommand(t *testing.T) {
	err := Execute(context.Background(), []string{"migrate"})

	assert.ErrorContains(t, err, `unknown command "migrate"`)
}

func TestServeRejectsBadPort(t *testing.T) {
	err := Execute(context.Background(), []string{"serve", "--port", "70000"})

	assert.ErrorContains(t, err, "valid TCP port")
}

func TestPrintModelsMarksDefaultAndAvailability(t *testing.T) {
	registry, err := provider.NewRegistry("b",
		provider.Descriptor{ID: "a", Model: "m-a", BaseURL: "https://x", Family: provider.FamilyOpenAI},
		provider.Descriptor{ID: "b", Model: "m-b", BaseURL: "https://x", Family: provider.FamilyGemini, APIKey: "k", Description: "Beta"},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printModels(&buf, registry))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Regexp(t, `a\s+m-a\s+openai\s+false`, out)
	assert.Regexp(t, `b \*\s+m-b\s+gemini\s+true\s+Beta`, out)
}

func TestNewLoggerLevels(t *testing.T) {
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "text"})

	assert.False(t, logger.Enabled(context.Background(), -4))
	assert.True(t, logger.Enabled(context.Background(), 4))
}

func TestOpenStoreMemory(t *testing.T) {
	s, closeFn, err := openStore(config.DatabaseConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	defer closeFn()

	assert.NotNil(t, s)
}

func TestOpenStoreMySQLNeedsDSN(t *testing.T) {
	t.Setenv("CRM_TEST_DSN", "")

	_, _, err := openStore(config.DatabaseConfig{Driver: config.DriverMySQL, DSNEnv: "CRM_TEST_DSN"})

	assert.ErrorContains(t, err, "CRM_TEST_DSN")
}
