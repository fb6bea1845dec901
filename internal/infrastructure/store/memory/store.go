package memory

import (
	"context"
	"sync"
	"time"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

// DefaultStaleAfter marks how long a task may sit in running state before a
// new Begin is allowed to reclaim it.
const DefaultStaleAfter = 30 * time.Minute

// Store keeps task records in process memory. Suitable for the CLI and for
// single-instance deployments without a database.
type Store struct {
	mu         sync.Mutex
	tasks      map[string]*entity.TaskRecord
	staleAfter time.Duration
	now        func() time.Time
}

var _ output.TaskStorePort = (*Store)(nil)

func New() *Store {
	return &Store{
		tasks:      make(map[string]*entity.TaskRecord),
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
}

func (s *Store) Begin(ctx context.Context, id, instructions string, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.tasks[id]
	if !ok {
		s.tasks[id] = &entity.TaskRecord{
			ID:           id,
			Instructions: instructions,
			Status:       entity.TaskStatusRunning,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return nil
	}

	switch {
	case rec.Status == entity.TaskStatusRunning:
		if now.Sub(rec.UpdatedAt) < s.staleAfter {
			return output.ErrTaskRunning
		}
	case rec.Status.Terminal() && !force:
		return output.ErrTaskDone
	}

	rec.Instructions = instructions
	rec.Status = entity.TaskStatusRunning
	rec.Result = nil
	rec.UpdatedAt = now
	return nil
}

func (s *Store) SaveResult(ctx context.Context, id string, res *entity.ExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tasks[id]
	if !ok {
		return output.ErrNotFound
	}
	rec.Status = res.Status
	rec.Result = res
	rec.UpdatedAt = s.now()
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*entity.TaskRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.tasks[id]
	if !ok {
		return nil, output.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *Store) ResetStale(ctx context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	count := 0
	for _, rec := range s.tasks {
		if rec.Status == entity.TaskStatusRunning && rec.UpdatedAt.Before(cutoff) {
			rec.Status = entity.TaskStatusCreated
			rec.UpdatedAt = s.now()
			count++
		}
	}
	return count, nil
}
