package llm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"postgen/pkg/confkit"
)

const (
	defaultProvider  = ProviderAnthropic
	defaultModel     = "claude-3-sonnet-20240229"
	defaultMaxTokens = 1000
	defaultLogLevel  = "info"

	envProvider = "POSTGEN_PROVIDER"
	envModel    = "POSTGEN_MODEL"
	envTimeout  = "POSTGEN_TIMEOUT"
)

// Config holds runtime settings for the LLM client.
type Config struct {
	Provider  string        `yaml:"provider"`
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"-"`
	LogLevel  string        `yaml:"log_level"`

	timeoutRaw string
}

type rawConfig struct {
	Provider  string `yaml:"provider"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Timeout   string `yaml:"timeout"`
	LogLevel  string `yaml:"log_level"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open llm config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a yaml document, then applies
// defaults and environment overrides.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read llm config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal llm config: %w", err)
	}
	return finalize(raw)
}

// LoadConfigFromEnv builds a Config from defaults and the environment alone.
func LoadConfigFromEnv() (*Config, error) {
	return finalize(rawConfig{})
}

func finalize(raw rawConfig) (*Config, error) {
	cfg := &Config{
		Provider:   raw.Provider,
		BaseURL:    raw.BaseURL,
		APIKey:     raw.APIKey,
		Model:      raw.Model,
		MaxTokens:  raw.MaxTokens,
		LogLevel:   raw.LogLevel,
		timeoutRaw: raw.Timeout,
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the client cannot run without. The credential
// is deliberately not checked; the remote API rejects a missing one.
func (c *Config) Validate() error {
	if _, ok := lookupProvider(c.Provider); !ok {
		return fmt.Errorf("llm config: unsupported provider %q", c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("llm config: model is required")
	}
	if c.MaxTokens <= 0 {
		return errors.New("llm config: max_tokens must be positive")
	}
	if c.Timeout < 0 {
		return errors.New("llm config: timeout cannot be negative")
	}
	return nil
}

// HasCredential reports whether an API key is configured.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (c *Config) applyEnvOverrides() {
	c.Provider = expandAndOverride(c.Provider, envProvider)
	c.Model = expandAndOverride(c.Model, envModel)

	// A provider prefix on the model ("openai/gpt-4o") selects the backend.
	if prefix, name := ParseModelID(c.Model); prefix != "" {
		if _, ok := lookupProvider(prefix); ok {
			c.Provider, c.Model = prefix, name
		}
	}
	if strings.TrimSpace(c.Provider) == "" {
		c.Provider = defaultProvider
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))

	if spec, ok := lookupProvider(c.Provider); ok {
		c.BaseURL = expandAndOverride(c.BaseURL, spec.baseURLEnv)
		c.APIKey = os.ExpandEnv(c.APIKey)
		if key := confkit.Credential(spec.apiKeyEnv); key != "" {
			c.APIKey = key
		}
	}

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Model) == "" {
		c.Model = defaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if spec, ok := lookupProvider(c.Provider); ok && strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = spec.defaultBaseURL
	}
}

func (c *Config) parseTimeout() error {
	if strings.TrimSpace(c.timeoutRaw) == "" {
		c.Timeout = 0
		return nil
	}
	d, err := time.ParseDuration(c.timeoutRaw)
	if err != nil {
		return fmt.Errorf("llm config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d < 0 {
		return fmt.Errorf("llm config: timeout cannot be negative, got %s", d)
	}
	c.Timeout = d
	return nil
}

func expandAndOverride(current, envKey string) string {
	current = os.ExpandEnv(current)
	if envVal := strings.TrimSpace(os.Getenv(envKey)); envVal != "" {
		return envVal
	}
	return current
}
