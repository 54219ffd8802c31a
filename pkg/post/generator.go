package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postgen/pkg/llm"
)

const maxLoggedReply = 512

// Generator issues one LLM call per Generate and decodes the reply.
type Generator struct {
	client     llm.LLMClient
	logger     llm.Logger
	model      string
	maxTokens  int
	structured bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger that receives diagnostics.
func WithLogger(logger llm.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithModel overrides the client's configured model.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = strings.TrimSpace(model) }
}

// WithMaxTokens bounds the generated tokens; zero keeps the client default.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithStructuredOutput asks schema-capable backends for a JSON-schema
// constrained reply instead of priming.
func WithStructuredOutput(enabled bool) Option {
	return func(g *Generator) { g.structured = enabled }
}

// NewGenerator wires a Generator to client.
func NewGenerator(client llm.LLMClient, opts ...Option) (*Generator, error) {
	if client == nil {
		return nil, errors.New("post: llm client is required")
	}
	g := &Generator{client: client}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxTokens < 0 {
		return nil, fmt.Errorf("post: max tokens cannot be negative, got %d", g.maxTokens)
	}
	if g.logger == nil {
		g.logger = llm.NewLogger("")
	}
	return g, nil
}

// BuildRequest returns the primed request Generate sends for prompt: the
// system instruction, the user prompt, and an assistant turn holding only
// PrimingPrefix, sampled at temperature zero.
func (g *Generator) BuildRequest(prompt string) *llm.ChatRequest {
	req := &llm.ChatRequest{
		Model:  g.model,
		System: SystemInstruction,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
			{Role: llm.RoleAssistant, Content: PrimingPrefix},
		},
		Temperature: llm.Float(0),
	}
	if g.maxTokens > 0 {
		req.MaxTokens = llm.Int(g.maxTokens)
	}
	return req
}

// Generate asks the model for a post about prompt.
//
// A reply that cannot be decoded is not an error: the diagnostic is logged and
// Generate returns (nil, nil). Transport and API failures are returned as
// errors and are never retried.
func (g *Generator) Generate(ctx context.Context, prompt string) (*Post, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if g.structured {
		if sc, ok := g.client.(llm.StructuredChatter); ok {
			return g.generateStructured(ctx, sc, prompt)
		}
		g.logger.Warn(ctx, "structured output unsupported by provider, using primed reply", llm.Fields{
			"provider": g.provider(),
		})
	}

	resp, err := g.client.Chat(ctx, g.BuildRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("post: generate: %w", err)
	}
	p, err := Decode(resp.Content)
	if err != nil {
		g.diagnose(ctx, err, resp)
		return nil, nil
	}
	return p, nil
}

func (g *Generator) generateStructured(ctx context.Context, sc llm.StructuredChatter, prompt string) (*Post, error) {
	req := g.BuildRequest(prompt)
	req.Messages = req.Messages[:1]

	var decoded Post
	resp, err := sc.ChatStructured(ctx, req, &decoded)
	if err != nil {
		if errors.Is(err, llm.ErrStructuredDecode) {
			g.diagnose(ctx, err, resp)
			return nil, nil
		}
		return nil, fmt.Errorf("post: generate: %w", err)
	}
	p, err := ParseDocument(strings.TrimSpace(resp.Content))
	if err != nil {
		g.diagnose(ctx, err, resp)
		return nil, nil
	}
	return p, nil
}

func (g *Generator) diagnose(ctx context.Context, err error, resp *llm.ChatResponse) {
	fields := llm.Fields{}
	if resp != nil {
		fields["model"] = resp.Model
		fields["stop_reason"] = resp.StopReason
		fields["reply"] = truncate(resp.Content, maxLoggedReply)
	}
	g.logger.Error(ctx, fmt.Errorf("error parsing JSON: %w", err), fields)
}

func (g *Generator) provider() string {
	if cfg := g.client.GetConfig(); cfg != nil {
		return cfg.Provider
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
