package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
	"taskagent/internal/infrastructure/logger"
)

func TestCompleteUnknownProviderReturnsFailureText(t *testing.T) {
	factory := NewFactory(logger.NewNop())
	client := factory.New(entity.LLMConfig{Provider: "fancy-ai", Model: "m1"})

	reply := client.Complete(context.Background(), output.CompletionRequest{Prompt: "hello"})

	assert.Contains(t, reply, "Error generating response (fancy-ai/m1)")
	assert.Contains(t, reply, "unsupported LLM provider")
}

func TestVisionSupport(t *testing.T) {
	assert.True(t, visionSupported(ProviderOpenAI))
	assert.True(t, visionSupported(ProviderAzure))
	assert.True(t, visionSupported(ProviderOpenRouter))
	assert.True(t, visionSupported(ProviderAnthropic))
	assert.True(t, visionSupported(ProviderGemini))
	assert.True(t, visionSupported("OpenAI"))

	assert.False(t, visionSupported(ProviderDeepSeek))
	assert.False(t, visionSupported(ProviderOllama))
	assert.False(t, visionSupported("unknown"))
}
