package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"postgen/internal/config"
	"postgen/pkg/confkit"
	"postgen/pkg/llm"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
// Secrets are reported by presence only.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		sectionLine("LLM config", cfg.LLM),
	}
	if llmCfg := cfg.LLMConfig(); llmCfg != nil {
		lines = append(lines,
			fmt.Sprintf("Provider: %s", llmCfg.Provider),
			fmt.Sprintf("Model: %s (max tokens %d)", llmCfg.Model, llmCfg.MaxTokens),
			fmt.Sprintf("Base URL: %s", llmCfg.BaseURL),
			fmt.Sprintf("Credential (%s): %s", llm.CredentialEnv(llmCfg.Provider), presence(llmCfg.HasCredential())),
		)
		if llmCfg.Timeout > 0 {
			lines = append(lines, fmt.Sprintf("Timeout: %s", llmCfg.Timeout))
		}
	}
	lines = append(lines,
		fmt.Sprintf("Prompt template: %s", valueOr(cfg.Post.PromptTemplate, "not configured")),
		fmt.Sprintf("Structured output: %t", cfg.Post.Structured),
	)
	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: environment", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
