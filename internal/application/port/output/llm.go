package output

import (
	"context"

	"taskagent/internal/domain/entity"
)

type CompletionRequest struct {
	Prompt string
	// Image is the current viewport; attached only when UseVision is set
	// and the provider supports vision input.
	Image     *entity.Screenshot
	UseVision bool
}

// LLMPort abstracts one configured LLM provider. Complete never fails:
// provider-level errors (auth, rate limit, network) are returned as
// descriptive reply text so the loop can handle them as an ordinary
// non-actionable reply.
type LLMPort interface {
	Complete(ctx context.Context, req CompletionRequest) string
}

// LLMFactory creates a client for the provider/model a task asked for.
type LLMFactory interface {
	New(cfg entity.LLMConfig) LLMPort
}
