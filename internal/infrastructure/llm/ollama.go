package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"taskagent/internal/application/port/output"
)

const defaultOllamaEndpoint = "http://localhost:11434"

func (c *Client) completeOllama(ctx context.Context, req output.CompletionRequest) (string, error) {
	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid ollama endpoint %q: %w", endpoint, err)
	}
	client := api.NewClient(u, http.DefaultClient)

	stream := false
	chatReq := &api.ChatRequest{
		Model: c.cfg.Model,
		Messages: []api.Message{
			{Role: "user", Content: req.Prompt},
		},
		Stream: &stream,
	}

	var sb strings.Builder
	err = client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama completion failed: %w", err)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response")
	}
	return sb.String(), nil
}
