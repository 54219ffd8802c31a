package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIClient sends chat requests to an OpenAI-compatible Chat Completions
// endpoint.
type OpenAIClient struct {
	config     *Config
	client     *openai.Client
	logger     Logger
	httpClient *http.Client
}

func newOpenAIClient(cfg *Config, opts clientOptions) *OpenAIClient {
	oa := opts.openaiClient
	if oa == nil {
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
		clientVal := openai.NewClient(reqOpts...)
		oa = &clientVal
	}
	return &OpenAIClient{
		config:     cfg,
		client:     oa,
		logger:     opts.logger,
		httpClient: opts.httpClient,
	}
}

// Chat performs a single synchronous completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	params, p, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, params, p.model, len(req.Messages))
}

// ChatStructured asks for a reply matching the JSON schema of target and
// decodes it into target. On a decode failure the response is still returned
// alongside an error wrapping ErrStructuredDecode.
func (c *OpenAIClient) ChatStructured(ctx context.Context, req *ChatRequest, target interface{}) (*ChatResponse, error) {
	if target == nil {
		return nil, errors.New("llm: structured target cannot be nil")
	}
	value := reflect.ValueOf(target)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return nil, errors.New("llm: structured target must be a pointer")
	}
	schema, err := GenerateSchema(target)
	if err != nil {
		return nil, err
	}

	params, p, err := c.buildParams(req)
	if err != nil {
		return nil, err
	}
	params.ResponseFormat = jsonSchemaFormat(deriveSchemaName(value), schema)

	resp, err := c.complete(ctx, params, p.model, len(req.Messages))
	if err != nil {
		return nil, err
	}
	if err := ParseStructured(strings.TrimSpace(resp.Content), target); err != nil {
		c.logger.Error(ctx, fmt.Errorf("parse structured response: %w", err), Fields{
			"model": resp.Model,
		})
		return resp, err
	}
	return resp, nil
}

// GetConfig returns a copy of the client configuration.
func (c *OpenAIClient) GetConfig() *Config {
	return c.config.Clone()
}

// Close releases idle connections held by an injected HTTP client.
func (c *OpenAIClient) Close() error {
	closeIdle(c.httpClient)
	return nil
}

func (c *OpenAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams, model string, messages int) (*ChatResponse, error) {
	start := time.Now()
	c.logger.Info(ctx, "llm chat request", Fields{
		"provider": ProviderOpenAI,
		"model":    model,
		"messages": messages,
	})

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.logger.Error(ctx, fmt.Errorf("chat completion failed: %w", err), Fields{
			"provider": ProviderOpenAI,
			"model":    model,
		})
		return nil, fmt.Errorf("llm: openai chat completion: %w", err)
	}

	result := convertCompletion(completion)
	c.logger.Info(ctx, "llm chat success", Fields{
		"provider":      ProviderOpenAI,
		"model":         result.Model,
		"duration_ms":   time.Since(start).Milliseconds(),
		"input_tokens":  result.Usage.InputTokens,
		"output_tokens": result.Usage.OutputTokens,
		"stop_reason":   result.StopReason,
	})
	return result, nil
}

func (c *OpenAIClient) buildParams(req *ChatRequest) (openai.ChatCompletionNewParams, callParams, error) {
	p, err := resolveCallParams(c.config, req)
	if err != nil {
		return openai.ChatCompletionNewParams{}, callParams{}, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(p.maxTokens)),
	}
	if p.temperature != nil {
		params.Temperature = openai.Float(*p.temperature)
	}
	return params, p, nil
}

func jsonSchemaFormat(name string, schema map[string]interface{}) openai.ChatCompletionNewParamsResponseFormatUnion {
	if name == "" {
		name = "structured_output"
	}
	val := shared.ResponseFormatJSONSchemaParam{
		JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:        name,
			Schema:      schema,
			Strict:      openai.Bool(true),
			Description: openai.String("Structured response"),
		},
	}
	val.Type = val.Type.Default()
	return openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONSchema: &val}
}

func convertCompletion(resp *openai.ChatCompletion) *ChatResponse {
	if resp == nil {
		return &ChatResponse{}
	}
	result := &ChatResponse{
		ID:    resp.ID,
		Model: resp.Model,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		RawJSON: resp.RawJSON(),
	}
	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
		result.StopReason = resp.Choices[0].FinishReason
	}
	return result
}

func deriveSchemaName(val reflect.Value) string {
	t := val.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}
