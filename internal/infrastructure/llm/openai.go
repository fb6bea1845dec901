package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"taskagent/internal/application/port/output"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"
const openrouterBaseURL = "https://openrouter.ai/api/v1"

// completeOpenAI covers every OpenAI-compatible provider: openai itself,
// azure deployments, deepseek and openrouter.
func (c *Client) completeOpenAI(ctx context.Context, req output.CompletionRequest) (string, error) {
	var config openai.ClientConfig
	switch c.cfg.Provider {
	case ProviderAzure:
		config = openai.DefaultAzureConfig(c.cfg.APIKey, c.cfg.Endpoint)
	case ProviderDeepSeek:
		config = openai.DefaultConfig(c.cfg.APIKey)
		config.BaseURL = deepseekBaseURL
	case ProviderOpenRouter:
		config = openai.DefaultConfig(c.cfg.APIKey)
		config.BaseURL = openrouterBaseURL
	default:
		config = openai.DefaultConfig(c.cfg.APIKey)
		if c.cfg.Endpoint != "" {
			config.BaseURL = c.cfg.Endpoint
		}
	}

	client := openai.NewClientWithConfig(config)

	message := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.Image != nil {
		message.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", req.Image.MIMEType(), base64.StdEncoding.EncodeToString(req.Image.Data)),
				},
			},
		}
	} else {
		message.Content = req.Prompt
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
