package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient sends chat requests through the Anthropic Messages API.
type AnthropicClient struct {
	config     *Config
	client     *anthropic.Client
	logger     Logger
	httpClient *http.Client
}

func newAnthropicClient(cfg *Config, opts clientOptions) *AnthropicClient {
	ac := opts.anthropicClient
	if ac == nil {
		reqOpts := []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		}
		if cfg.Timeout > 0 {
			reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
		}
		if opts.httpClient != nil {
			reqOpts = append(reqOpts, option.WithHTTPClient(opts.httpClient))
		}
		clientVal := anthropic.NewClient(reqOpts...)
		ac = &clientVal
	}
	return &AnthropicClient{
		config:     cfg,
		client:     ac,
		logger:     opts.logger,
		httpClient: opts.httpClient,
	}
}

// Chat performs a single Messages call. A trailing assistant message is
// forwarded as a prefill; the returned content excludes it.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	p, err := resolveCallParams(c.config, req)
	if err != nil {
		return nil, err
	}
	params := buildAnthropicParams(req, p)

	start := time.Now()
	c.logger.Info(ctx, "llm chat request", Fields{
		"provider": ProviderAnthropic,
		"model":    p.model,
		"messages": len(req.Messages),
	})

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("messages request failed: %w", err), Fields{
			"provider": ProviderAnthropic,
			"model":    p.model,
		})
		return nil, fmt.Errorf("llm: anthropic messages: %w", err)
	}

	result := convertAnthropicMessage(msg)
	c.logger.Info(ctx, "llm chat success", Fields{
		"provider":      ProviderAnthropic,
		"model":         result.Model,
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_tokens":  result.Usage.InputTokens,
		"output_tokens": result.Usage.OutputTokens,
		"stop_reason":   result.StopReason,
	})
	return result, nil
}

// GetConfig returns a copy of the client configuration.
func (c *AnthropicClient) GetConfig() *Config {
	return c.config.Clone()
}

// Close releases idle connections held by an injected HTTP client.
func (c *AnthropicClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}

func buildAnthropicParams(req *ChatRequest, p callParams) anthropic.MessageNewParams {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if p.temperature != nil {
		params.Temperature = anthropic.Float(*p.temperature)
	}
	return params
}

func convertAnthropicMessage(msg *anthropic.Message) *ChatResponse {
	if msg == nil {
		return &ChatResponse{}
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &ChatResponse{
		ID:         msg.ID,
		Model:      string(msg.Model),
		Content:    text.String(),
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		RawJSON: msg.RawJSON(),
	}
}
