package output

import (
	"context"
	"errors"
	"time"

	"taskagent/internal/domain/entity"
)

var (
	// ErrTaskRunning rejects a second concurrent start of the same task.
	ErrTaskRunning = errors.New("task is already running")
	// ErrTaskDone rejects re-running a finished or failed task without force.
	ErrTaskDone = errors.New("task already finished; re-run requires force")
	ErrNotFound = errors.New("task not found")
)

// TaskStorePort is the external persistence for task metadata and execution
// history. All operations are scoped to one task's row.
type TaskStorePort interface {
	// Begin transitions the task to running, enforcing the re-entrancy
	// guard: a running task is rejected with ErrTaskRunning unless it has
	// been stuck longer than the store's staleness threshold, and a
	// terminal task is rejected with ErrTaskDone unless force is set.
	// Unknown task IDs are created.
	Begin(ctx context.Context, id, instructions string, force bool) error

	// SaveResult persists the final result and its status.
	SaveResult(ctx context.Context, id string, res *entity.ExecutionResult) error

	Get(ctx context.Context, id string) (*entity.TaskRecord, error)

	// ResetStale flips tasks abandoned in running state (e.g. by a crashed
	// worker) back to created so they can run again. Returns the count.
	ResetStale(ctx context.Context, olderThan time.Duration) (int, error)
}

// ScreenshotStorePort persists screenshot bytes and hands back a stable
// file path the core treats as opaque.
type ScreenshotStorePort interface {
	Save(taskID string, data []byte) (string, error)
	// SaveDataURI accepts a base64 data URI ("data:image/png;base64,...").
	SaveDataURI(taskID, uri string) (string, error)
}
