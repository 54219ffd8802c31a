// Package llm is a small provider-neutral chat client. It speaks to Anthropic
// through the Messages API and to OpenAI-compatible endpoints through Chat
// Completions, and never retries on its own.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// LLMClient defines the supported client behaviours.
type LLMClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	GetConfig() *Config
	Close() error
}

// StructuredChatter is implemented by backends that can constrain a reply to
// a JSON schema derived from target.
type StructuredChatter interface {
	ChatStructured(ctx context.Context, req *ChatRequest, target interface{}) (*ChatResponse, error)
}

// ClientOption configures optional client behaviour.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger          Logger
	httpClient      *http.Client
	anthropicClient *anthropic.Client
	openaiClient    *openai.Client
}

// WithLogger injects a custom logger implementation.
func WithLogger(logger Logger) ClientOption {
	return func(opts *clientOptions) {
		opts.logger = logger
	}
}

// WithHTTPClient replaces the HTTP client used by the vendor SDK.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.httpClient = client
	}
}

// WithAnthropicClient injects a pre-configured Anthropic SDK client.
func WithAnthropicClient(client *anthropic.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.anthropicClient = client
	}
}

// WithOpenAIClient injects a pre-configured OpenAI SDK client.
func WithOpenAIClient(client *openai.Client) ClientOption {
	return func(opts *clientOptions) {
		opts.openaiClient = client
	}
}

// NewClient constructs the backend named by cfg.Provider.
func NewClient(cfg *Config, opts ...ClientOption) (LLMClient, error) {
	if cfg == nil {
		return nil, errors.New("llm: config cannot be nil")
	}
	clientCfg := cfg.Clone()
	if err := clientCfg.Validate(); err != nil {
		return nil, err
	}

	optState := clientOptions{}
	for _, opt := range opts {
		opt(&optState)
	}
	if optState.logger == nil {
		optState.logger = NewLogger(clientCfg.LogLevel)
	}
	if !clientCfg.HasCredential() {
		optState.logger.Warn(context.Background(), "llm credential is not set; requests will be rejected by the provider", Fields{
			"provider": clientCfg.Provider,
			"env":      CredentialEnv(clientCfg.Provider),
		})
	}

	switch clientCfg.Provider {
	case ProviderAnthropic:
		return newAnthropicClient(clientCfg, optState), nil
	case ProviderOpenAI:
		return newOpenAIClient(clientCfg, optState), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", clientCfg.Provider)
	}
}

type callParams struct {
	model       string
	maxTokens   int
	temperature *float64
}

func resolveCallParams(cfg *Config, req *ChatRequest) (callParams, error) {
	if req == nil {
		return callParams{}, errors.New("llm: request cannot be nil")
	}
	if len(req.Messages) == 0 {
		return callParams{}, errors.New("llm: request requires at least one message")
	}
	for i, m := range req.Messages {
		switch m.Role {
		case RoleUser, RoleAssistant:
		default:
			return callParams{}, fmt.Errorf("llm: message %d has unsupported role %q", i, m.Role)
		}
	}

	p := callParams{
		model:       strings.TrimSpace(req.Model),
		maxTokens:   cfg.MaxTokens,
		temperature: req.Temperature,
	}
	if p.model == "" {
		p.model = cfg.Model
	}
	if req.MaxTokens != nil {
		p.maxTokens = *req.MaxTokens
	}
	if p.maxTokens <= 0 {
		return callParams{}, fmt.Errorf("llm: max tokens must be positive, got %d", p.maxTokens)
	}
	return p, nil
}

func closeIdle(client *http.Client) {
	if client == nil {
		return
	}
	client.CloseIdleConnections()
}
