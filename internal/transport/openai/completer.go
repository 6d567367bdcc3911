package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/geodex/internal/domain"
	"github.com/kailas-cloud/geodex/internal/metrics"
)

// Completer is a chat completion provider using the OpenAI-compatible API.
// Model and temperature are fixed per instance: the service builds one
// completer for intent parsing and another for answer synthesis.
type Completer struct {
	client      *openai.Client
	model       string
	temperature float32
	user        string
	provider    string
	logger      *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	User        string
	Provider    string
	Logger      *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		user:        cfg.User,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	return c.createCompletion(ctx, req, nil)
}

// CompleteStructured implements domain.StructuredCompleter. The response is
// constrained to a JSON schema generated from out and unmarshaled into it.
func (c *Completer) CompleteStructured(
	ctx context.Context,
	req domain.CompletionRequest,
	schemaName string,
	out any,
) (domain.CompletionResult, error) {
	schema, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("generate schema %s: %w", schemaName, err)
	}

	format := &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   schemaName,
			Schema: schema,
			// Strict mode requires every property to be required; the intent
			// schema has optional fields.
			Strict: false,
		},
	}

	result, err := c.createCompletion(ctx, req, format)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	if err := json.Unmarshal([]byte(result.Content), out); err != nil {
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "malformed_payload").Inc()
		return result, fmt.Errorf("unmarshal %s payload: %w", schemaName, domain.ErrIntentMalformed)
	}

	return result, nil
}

func (c *Completer) createCompletion(
	ctx context.Context,
	req domain.CompletionRequest,
	format *openai.ChatCompletionResponseFormat,
) (domain.CompletionResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	apiReq := openai.ChatCompletionRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    c.temperature,
		User:           c.user,
		ResponseFormat: format,
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, apiReq)

	duration := time.Since(start)

	if err != nil {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "api_error").Inc()
		return domain.CompletionResult{}, parseAPIError("completion", err)
	}

	if len(resp.Choices) == 0 {
		metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		metrics.CompletionErrorsTotal.WithLabelValues(c.provider, c.model, "empty_response").Inc()
		return domain.CompletionResult{}, fmt.Errorf("no completion choices: %w", domain.ErrLLMProviderError)
	}

	metrics.CompletionRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.CompletionRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "completion").
			Add(float64(resp.Usage.CompletionTokens))
		metrics.CompletionTokensTotal.WithLabelValues(c.provider, c.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return domain.CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
