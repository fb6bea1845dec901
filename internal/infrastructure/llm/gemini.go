package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"taskagent/internal/application/port/output"
)

func (c *Client) completeGemini(ctx context.Context, req output.CompletionRequest) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.Image.MIMEType(),
				Data:     req.Image.Data,
			},
		})
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
