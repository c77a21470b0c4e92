package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"salesight/internal/config"
)

// Client is the single-turn text-generation boundary. The compiler calls it
// with temperature 0 (deterministic decoding); the verdict step with a
// non-zero temperature (exploratory prose).
type Client interface {
	Complete(ctx context.Context, system, user string, temperature float64) (string, error)
}

// Anthropic implements Client against the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropic builds a client from configuration.
func NewAnthropic(cfg config.AnthropicConfig) *Anthropic {
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
	}
}

// Complete sends one user turn and returns the response text.
func (a *Anthropic) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	start := time.Now()

	params := anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: system},
		}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		slog.Error("anthropic call failed", "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("anthropic API error: %w", err)
	}
	slog.Debug("anthropic call completed", "duration", time.Since(start), "stopReason", msg.StopReason)

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}
