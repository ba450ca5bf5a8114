// Package ai implements the chat-completion client used to generate replies.
// It talks to an OpenAI-compatible endpoint (OpenRouter in production) through
// sashabaranov/go-openai and applies a two-tier failure strategy: primary
// model, then a fixed fallback model, then a canned reply. Complete never
// returns an error — the pipeline must always have something to send.
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FallbackText is the canned reply sent when both model tiers fail. It must
// stay a graceful natural-language message; the customer never sees an error.
const FallbackText = `I apologize, I'm having a brief technical issue. Please try again in a moment, or type "human" to speak with our team directly.`

// Message is one chat turn in provider wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the outcome of a completion call. TokensUsed is zero when the
// canned fallback was used.
type Reply struct {
	Text       string
	TokensUsed int
}

// Config holds the completion client settings.
type Config struct {
	APIKey        string
	BaseURL       string        // OpenAI-compatible base, e.g. https://openrouter.ai/api/v1
	PrimaryModel  string        // first attempt
	FallbackModel string        // second attempt on any primary failure
	MaxTokens     int
	Temperature   float32
	Timeout       time.Duration // per attempt
}

// Client calls the chat-completions endpoint. Safe for concurrent use.
type Client struct {
	api *openai.Client
	cfg Config
	log zerolog.Logger
}

var errEmptyCompletion = errors.New("empty completion")

// NewClient builds a Client, applying defaults for unset fields.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = "meta-llama/llama-3.1-8b-instruct"
	}
	if cfg.FallbackModel == "" {
		cfg.FallbackModel = "openrouter/free"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		api: openai.NewClientWithConfig(oc),
		cfg: cfg,
		log: log.With().Str("component", "ai").Logger(),
	}
}

// Complete generates a reply for the given conversation. Any transport,
// provider, or parse failure degrades first to the fallback model and finally
// to FallbackText with zero tokens; the method never fails.
func (c *Client) Complete(ctx context.Context, messages []Message) Reply {
	tr := otel.Tracer("ai/Client")
	ctx, span := tr.Start(ctx, "Complete",
		trace.WithAttributes(
			attribute.String("ai.model.primary", c.cfg.PrimaryModel),
			attribute.Int("ai.messages", len(messages)),
		),
	)
	defer span.End()

	if c.cfg.APIKey == "" {
		c.log.Error().Msg("completion API key not configured")
		return Reply{Text: FallbackText, TokensUsed: 0}
	}

	text, tokens, err := c.call(ctx, c.cfg.PrimaryModel, messages)
	if err == nil {
		return Reply{Text: text, TokensUsed: tokens}
	}
	c.log.Warn().
		Err(err).
		Str("model", c.cfg.PrimaryModel).
		Str("fallback", c.cfg.FallbackModel).
		Msg("primary model failed, trying fallback")

	text, tokens, err = c.call(ctx, c.cfg.FallbackModel, messages)
	if err == nil {
		return Reply{Text: text, TokensUsed: tokens}
	}
	c.log.Error().
		Err(err).
		Str("model", c.cfg.FallbackModel).
		Msg("both primary and fallback models failed")

	return Reply{Text: FallbackText, TokensUsed: 0}
}

// call performs one bounded completion attempt against a single model.
func (c *Client) call(ctx context.Context, model string, messages []Message) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	req.Messages = make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", 0, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", 0, errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, resp.Usage.TotalTokens, nil
}
