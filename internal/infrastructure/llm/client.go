package llm

import (
	"context"
	"fmt"
	"strings"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

var _ output.LLMPort = (*Client)(nil)
var _ output.LLMFactory = (*Factory)(nil)

const (
	ProviderOpenAI     = "openai"
	ProviderAzure      = "azure"
	ProviderDeepSeek   = "deepseek"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

const (
	maxTokens   = 1500
	temperature = 0.7
)

type Factory struct {
	logger output.LoggerPort
}

func NewFactory(logger output.LoggerPort) *Factory {
	return &Factory{logger: logger}
}

func (f *Factory) New(cfg entity.LLMConfig) output.LLMPort {
	return &Client{cfg: cfg, logger: f.logger}
}

// Client dispatches Complete to the configured provider. Provider-level
// failures never surface as errors: they come back as descriptive reply
// text the loop treats as an ordinary non-actionable reply.
type Client struct {
	cfg    entity.LLMConfig
	logger output.LoggerPort
}

func (c *Client) Complete(ctx context.Context, req output.CompletionRequest) string {
	text, err := c.complete(ctx, req)
	if err != nil {
		c.logger.Error("llm call failed", "provider", c.cfg.Provider, "model", c.cfg.Model, "error", err)
		return fmt.Sprintf("Error generating response (%s/%s): %v", c.cfg.Provider, c.cfg.Model, err)
	}
	return text
}

func (c *Client) complete(ctx context.Context, req output.CompletionRequest) (string, error) {
	// The image rides along only when vision is both requested and
	// supported; providers without vision input drop it silently.
	if !req.UseVision || !visionSupported(c.cfg.Provider) {
		req.Image = nil
	}

	switch strings.ToLower(c.cfg.Provider) {
	case ProviderOpenAI, ProviderAzure, ProviderDeepSeek, ProviderOpenRouter:
		return c.completeOpenAI(ctx, req)
	case ProviderAnthropic:
		return c.completeAnthropic(ctx, req)
	case ProviderGemini:
		return c.completeGemini(ctx, req)
	case ProviderOllama:
		return c.completeOllama(ctx, req)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.cfg.Provider)
	}
}

func visionSupported(provider string) bool {
	switch strings.ToLower(provider) {
	case ProviderOpenAI, ProviderAzure, ProviderOpenRouter, ProviderAnthropic, ProviderGemini:
		return true
	default:
		return false
	}
}
