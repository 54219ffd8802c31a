package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"postgen/pkg/confkit"
	llmpkg "postgen/pkg/llm"
)

// PostConf controls how the user prompt is produced.
type PostConf struct {
	// Prompt replaces the built-in topic when no prompt is given on the command line.
	Prompt string `json:",optional"`
	// PromptTemplate is a text/template file rendered with {Topic, Details}.
	PromptTemplate string `json:",optional"`
	// Structured asks schema-capable providers for JSON-schema constrained output.
	Structured bool `json:",default=false"`
}

type Config struct {
	Name string `json:",default=postgen"`
	// Env indicates the running environment: test | dev | prod
	Env string       `json:",default=dev"`
	Log logx.LogConf `json:",optional"`

	LLM  confkit.Section[llmpkg.Config] `json:",optional"`
	Post PostConf                       `json:",optional"`

	mainPath string
	baseDir  string
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the main config at path and hydrates the LLM section. Without
// an LLM file the section is built from the environment alone.
func Load(path string) (*Config, error) {
	confkit.LoadDotenvOnce()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve path %s: %w", path, err)
	}

	cfg, err := confkit.LoadFile[Config](absPath, true)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.mainPath = absPath
	cfg.baseDir = confkit.BaseDir(absPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.hydrateSections(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	switch env {
	case "":
		c.Env = "dev"
	case "test", "dev", "prod":
		c.Env = env
	default:
		return errors.New("config: env must be one of test|dev|prod")
	}
	c.Post.Prompt = strings.TrimSpace(c.Post.Prompt)
	return nil
}

func (c *Config) hydrateSections() error {
	if err := c.LLM.Hydrate(c.baseDir, llmpkg.LoadConfig); err != nil {
		return fmt.Errorf("config: load llm config: %w", err)
	}
	if err := c.LLM.Fallback(llmpkg.LoadConfigFromEnv); err != nil {
		return fmt.Errorf("config: llm config from env: %w", err)
	}
	if tmpl := strings.TrimSpace(c.Post.PromptTemplate); tmpl != "" {
		c.Post.PromptTemplate = confkit.ResolvePath(c.baseDir, tmpl)
	}
	return nil
}

// LLMConfig returns the hydrated LLM section.
func (c *Config) LLMConfig() *llmpkg.Config {
	return c.LLM.Value
}

func (c *Config) MainPath() string {
	return c.mainPath
}

func (c *Config) BaseDir() string {
	return c.baseDir
}
