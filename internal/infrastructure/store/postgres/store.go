package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

// DBPool abstracts pgxpool.Pool so the store can be tested with pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id           TEXT PRIMARY KEY,
    instructions TEXT NOT NULL,
    status       TEXT NOT NULL,
    result       JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// DefaultStaleAfter marks how long a task may sit in running state before a
// new Begin is allowed to reclaim it.
const DefaultStaleAfter = 30 * time.Minute

// Store persists task records in PostgreSQL.
type Store struct {
	pool       DBPool
	logger     output.LoggerPort
	staleAfter time.Duration
}

var _ output.TaskStorePort = (*Store)(nil)

// New verifies the connection and ensures the tasks table exists.
func New(ctx context.Context, pool DBPool, logger output.LoggerPort) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &Store{pool: pool, logger: logger, staleAfter: DefaultStaleAfter}, nil
}

const beginSQL = `
INSERT INTO tasks (id, instructions, status, result, created_at, updated_at)
VALUES ($1, $2, 'running', NULL, now(), now())
ON CONFLICT (id) DO UPDATE SET
    instructions = EXCLUDED.instructions,
    status = 'running',
    result = NULL,
    updated_at = now()
WHERE tasks.status = 'created'
   OR (tasks.status = 'running' AND tasks.updated_at < now() - ($3 * interval '1 second'))
   OR (tasks.status IN ('finished', 'failed') AND $4);`

func (s *Store) Begin(ctx context.Context, id, instructions string, force bool) error {
	tag, err := s.pool.Exec(ctx, beginSQL, id, instructions, s.staleAfter.Seconds(), force)
	if err != nil {
		return fmt.Errorf("failed to begin task %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The guard rejected the upsert; classify by current status.
	var status string
	err = s.pool.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return fmt.Errorf("failed to read status for task %s: %w", id, err)
	}
	if entity.TaskStatus(status) == entity.TaskStatusRunning {
		return output.ErrTaskRunning
	}
	return output.ErrTaskDone
}

func (s *Store) SaveResult(ctx context.Context, id string, res *entity.ExecutionResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result for task %s: %w", id, err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status = $2, result = $3, updated_at = now() WHERE id = $1`,
		id, string(res.Status), payload)
	if err != nil {
		return fmt.Errorf("failed to save result for task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*entity.TaskRecord, error) {
	rec := entity.TaskRecord{ID: id}
	var status string
	var payload []byte

	err := s.pool.QueryRow(ctx,
		`SELECT instructions, status, result, created_at, updated_at FROM tasks WHERE id = $1`,
		id).Scan(&rec.Instructions, &status, &payload, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, output.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %s: %w", id, err)
	}

	rec.Status = entity.TaskStatus(status)
	if len(payload) > 0 {
		var res entity.ExecutionResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("failed to decode result for task %s: %w", id, err)
		}
		rec.Result = &res
	}
	return &rec, nil
}

func (s *Store) ResetStale(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status = 'created', updated_at = now()
		 WHERE status = 'running' AND updated_at < now() - ($1 * interval '1 second')`,
		olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale tasks: %w", err)
	}
	count := int(tag.RowsAffected())
	if count > 0 {
		s.logger.Info("reset stale tasks", "count", count)
	}
	return count, nil
}
