package svc

import (
	"errors"
	"fmt"
	"strings"

	"postgen/internal/config"
	llmpkg "postgen/pkg/llm"
	"postgen/pkg/post"
)

type ServiceContext struct {
	Config config.Config

	LLMConfig *llmpkg.Config
	LLM       llmpkg.LLMClient
	Logger    llmpkg.Logger
	Generator *post.Generator

	// Optional prompt template (Post.PromptTemplate).
	Prompt       *llmpkg.PromptTemplate
	PromptDigest string
}

// PromptInput is what the caller supplied for this run.
type PromptInput struct {
	Prompt  string
	Topic   string
	Details string
}

// PromptData is the value a prompt template is rendered with.
type PromptData struct {
	Topic   string
	Details string
}

// NewServiceContext builds the LLM client and the post generator from c.
// Client options are forwarded to llm.NewClient.
func NewServiceContext(c config.Config, opts ...llmpkg.ClientOption) (*ServiceContext, error) {
	llmCfg := c.LLMConfig()
	if llmCfg == nil {
		return nil, errors.New("svc: llm config is not loaded")
	}

	svc := &ServiceContext{
		Config:    c,
		LLMConfig: llmCfg,

		// The main Log section owns the logx level.
		Logger: llmpkg.NewLogger(""),
	}

	if path := strings.TrimSpace(c.Post.PromptTemplate); path != "" {
		tmpl, err := llmpkg.NewPromptTemplate(path, nil)
		if err != nil {
			return nil, fmt.Errorf("svc: prompt template: %w", err)
		}
		svc.Prompt = tmpl
		svc.PromptDigest = tmpl.Digest()
	}

	client, err := llmpkg.NewClient(llmCfg, append([]llmpkg.ClientOption{llmpkg.WithLogger(svc.Logger)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("svc: llm client: %w", err)
	}
	svc.LLM = client

	gen, err := post.NewGenerator(client,
		post.WithLogger(svc.Logger),
		post.WithModel(llmCfg.Model),
		post.WithMaxTokens(llmCfg.MaxTokens),
		post.WithStructuredOutput(c.Post.Structured),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("svc: generator: %w", err)
	}
	svc.Generator = gen
	return svc, nil
}

// ResolvePrompt picks the user prompt for this run. In order: an explicit
// prompt, the template rendered with topic and details, the bare topic, the
// configured prompt, then post.DefaultPrompt.
func (s *ServiceContext) ResolvePrompt(in PromptInput) (string, error) {
	if p := strings.TrimSpace(in.Prompt); p != "" {
		return p, nil
	}
	topic := strings.TrimSpace(in.Topic)
	details := strings.TrimSpace(in.Details)
	if topic != "" {
		if s.Prompt != nil {
			out, err := s.Prompt.Render(PromptData{Topic: topic, Details: details})
			if err != nil {
				return "", fmt.Errorf("svc: render prompt: %w", err)
			}
			return out, nil
		}
		if details != "" {
			return topic + "\n\n" + details, nil
		}
		return topic, nil
	}
	if p := strings.TrimSpace(s.Config.Post.Prompt); p != "" {
		return p, nil
	}
	return post.DefaultPrompt, nil
}

func (s *ServiceContext) Close() error {
	if s == nil || s.LLM == nil {
		return nil
	}
	return s.LLM.Close()
}
