package input

import (
	"context"

	"taskagent/internal/domain/entity"
)

// TaskRunner drives one task to completion. Once the loop has started, hard
// failures surface only as Status=failed in the returned result; a non-nil
// error means the task was rejected before any step executed (re-entrancy
// conflict).
type TaskRunner interface {
	Run(ctx context.Context, inv entity.TaskInvocation) (*entity.ExecutionResult, error)
}
