package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zenoooe/ai-crm/internal/normalize"
	"github.com/Zenoooe/ai-crm/internal/provider"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// Config represents the application configuration parsed from YAML.
type Config struct {
	Server       ServerConfig      `yaml:"server"`
	Logging      LoggingConfig     `yaml:"logging"`
	Database     DatabaseConfig    `yaml:"database"`
	DefaultModel string            `yaml:"default_model"`
	Models       []ModelConfig     `yaml:"models"`
	Aliases      map[string]string `yaml:"aliases"`
	Confidence   ConfidenceConfig  `yaml:"confidence"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port                int      `yaml:"port"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	CORSOrigins         []string `yaml:"cors_origins"`
}

func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig selects the customer store. The DSN itself is read from
// the environment variable named by DSNEnv.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSNEnv string `yaml:"dsn_env"`
}

// DSN returns the connection string from the environment.
func (d DatabaseConfig) DSN() string {
	return strings.TrimSpace(os.Getenv(d.DSNEnv))
}

// ModelConfig describes one model the service can call. Credentials never
// live in the file; APIKeyEnv names the variable that holds them.
type ModelConfig struct {
	ID             string   `yaml:"id"`
	Description    string   `yaml:"description"`
	Model          string   `yaml:"model"`
	BaseURL        string   `yaml:"base_url"`
	Family         string   `yaml:"family"`
	APIKeyEnv      string   `yaml:"api_key_env"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	Temperature    *float64 `yaml:"temperature"`
	MaxTokens      *int     `yaml:"max_tokens"`
}

// ConfidenceConfig mirrors normalize.ConfidencePolicy.
type ConfidenceConfig struct {
	CapAbove    float64 `yaml:"cap_above"`
	CapTo       float64 `yaml:"cap_to"`
	FloorBelow  float64 `yaml:"floor_below"`
	FloorTo     float64 `yaml:"floor_to"`
	OverScaleTo float64 `yaml:"over_scale_to"`
	Default     float64 `yaml:"default"`
}

func (c ConfidenceConfig) Policy() normalize.ConfidencePolicy {
	return normalize.ConfidencePolicy{
		CapAbove:    c.CapAbove,
		CapTo:       c.CapTo,
		FloorBelow:  c.FloorBelow,
		FloorTo:     c.FloorTo,
		OverScaleTo: c.OverScaleTo,
		Default:     c.Default,
	}
}

// Default returns the embedded configuration.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load reads YAML configuration from disk on top of the embedded defaults
// and validates the result. Keys absent from the file keep their default
// values. A models section replaces the default catalogue together with its
// aliases and default model. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	return Parse(data, absPath)
}

// Parse decodes data over the embedded defaults. name is used in errors.
func Parse(data []byte, name string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}

	var present struct {
		Models  []ModelConfig     `yaml:"models"`
		Aliases map[string]string `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", name, err)
	}
	if present.Models != nil {
		cfg.DefaultModel = ""
		cfg.Aliases = nil
	}
	if present.Aliases != nil {
		cfg.Aliases = nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", name, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q must be json or text", c.Logging.Format)
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverMySQL:
		if !isEnvName(c.Database.DSNEnv) {
			return fmt.Errorf("database.dsn_env %q is not a valid environment variable name", c.Database.DSNEnv)
		}
	default:
		return fmt.Errorf("database.driver %q must be %q or %q", c.Database.Driver, DriverMemory, DriverMySQL)
	}

	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	ids := make(map[string]struct{}, len(c.Models))
	for _, m := range c.Models {
		if err := validateModel(m); err != nil {
			return err
		}
		if _, dup := ids[m.ID]; dup {
			return fmt.Errorf("model %s: configured twice", m.ID)
		}
		ids[m.ID] = struct{}{}
	}

	if c.DefaultModel != "" {
		if _, ok := ids[c.DefaultModel]; !ok {
			return fmt.Errorf("default_model %q is not a configured model", c.DefaultModel)
		}
	}

	for alias, target := range c.Aliases {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("alias name must not be empty")
		}
		if _, ok := ids[strings.TrimSpace(target)]; !ok {
			return fmt.Errorf("alias %q targets unknown model %q", alias, target)
		}
	}

	return validateConfidence(c.Confidence)
}

func validateModel(m ModelConfig) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("model id must not be empty")
	}
	if strings.TrimSpace(m.BaseURL) == "" {
		return fmt.Errorf("model %s: base_url must be provided", m.ID)
	}
	if _, err := provider.ParseFamily(m.Family); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	if !isEnvName(m.APIKeyEnv) {
		return fmt.Errorf("model %s: api_key_env %q is not a valid environment variable name", m.ID, m.APIKeyEnv)
	}
	if m.TimeoutSeconds < 0 {
		return fmt.Errorf("model %s: timeout_seconds must not be negative", m.ID)
	}
	if m.Temperature != nil && (*m.Temperature < 0 || *m.Temperature > 2) {
		return fmt.Errorf("model %s: temperature %.2f must be within [0, 2]", m.ID, *m.Temperature)
	}
	if m.MaxTokens != nil && *m.MaxTokens <= 0 {
		return fmt.Errorf("model %s: max_tokens must be positive", m.ID)
	}
	return nil
}

func validateConfidence(c ConfidenceConfig) error {
	values := map[string]float64{
		"cap_above":     c.CapAbove,
		"cap_to":        c.CapTo,
		"floor_below":   c.FloorBelow,
		"floor_to":      c.FloorTo,
		"over_scale_to": c.OverScaleTo,
		"default":       c.Default,
	}
	for name, v := range values {
		if v < 0 || v > 1 {
			return fmt.Errorf("confidence.%s %.2f must be within [0, 1]", name, v)
		}
	}
	if c.FloorBelow >= c.CapAbove {
		return fmt.Errorf("confidence.floor_below must be lower than confidence.cap_above")
	}
	return nil
}

func isEnvName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
