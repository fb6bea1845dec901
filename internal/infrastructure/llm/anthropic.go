package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"

	"taskagent/internal/application/port/output"
)

func (c *Client) completeAnthropic(ctx context.Context, req output.CompletionRequest) (string, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(c.cfg.APIKey),
		anthropic.WithModel(c.cfg.Model),
	}
	if c.cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(c.cfg.Endpoint))
	}

	model, err := anthropic.New(opts...)
	if err != nil {
		return "", fmt.Errorf("anthropic client: %w", err)
	}

	parts := []llms.ContentPart{llms.TextPart(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, llms.BinaryPart(req.Image.MIMEType(), req.Image.Data))
	}

	resp, err := model.GenerateContent(ctx,
		[]llms.MessageContent{{Role: llms.ChatMessageTypeHuman, Parts: parts}},
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Content, nil
}
