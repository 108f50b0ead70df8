// Package llm adapts the OpenAI-compatible chat completions API to the
// TextGenerator port. Any backend speaking the same wire protocol works by
// overriding the base URL.
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ayla-solutions/mail-classification-api/core/port/out"
	"github.com/ayla-solutions/mail-classification-api/pkg/apperr"
	"github.com/ayla-solutions/mail-classification-api/pkg/httputil"
)

// Generator implements out.TextGenerator over chat completions.
type Generator struct {
	client *openai.Client
}

// Config holds backend connection settings.
type Config struct {
	APIKey  string
	BaseURL string // empty keeps the default endpoint
}

// NewGenerator builds a Generator with the pooled LLM HTTP client.
func NewGenerator(cfg Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = httputil.LLMClient()
	return &Generator{client: openai.NewClientWithConfig(clientCfg)}
}

// Generate issues one chat completion. The seed is passed through so
// identical requests are reproducible against deterministic backends; the
// response format follows the requested mode.
func (g *Generator) Generate(ctx context.Context, req out.GenerateRequest) (string, error) {
	seed := req.Seed
	chatReq := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Seed:        &seed,
	}

	switch req.Mode {
	case out.ModeSchema:
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: true,
			},
		}
	case out.ModeJSON:
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", apperr.ExternalError("llm", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
