package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

func finishedResult() *entity.ExecutionResult {
	res := entity.NewExecutionResult()
	res.Status = entity.TaskStatusFinished
	res.Output = "done"
	return res
}

func TestBeginCreatesAndRuns(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx, "t1", "do things", false))

	rec, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusRunning, rec.Status)
	assert.Equal(t, "do things", rec.Instructions)
}

func TestBeginRejectsRunningTask(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx, "t1", "x", false))
	assert.ErrorIs(t, s.Begin(ctx, "t1", "x", false), output.ErrTaskRunning)
	// Force does not bypass the running guard.
	assert.ErrorIs(t, s.Begin(ctx, "t1", "x", true), output.ErrTaskRunning)
}

func TestBeginTerminalRequiresForce(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Begin(ctx, "t1", "x", false))
	require.NoError(t, s.SaveResult(ctx, "t1", finishedResult()))

	assert.ErrorIs(t, s.Begin(ctx, "t1", "x", false), output.ErrTaskDone)
	require.NoError(t, s.Begin(ctx, "t1", "retry", true))

	rec, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusRunning, rec.Status)
	assert.Equal(t, "retry", rec.Instructions)
	assert.Nil(t, rec.Result)
}

func TestBeginReclaimsStaleRunningTask(t *testing.T) {
	s := New()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }
	require.NoError(t, s.Begin(ctx, "t1", "x", false))

	// Still fresh: rejected.
	s.now = func() time.Time { return now.Add(DefaultStaleAfter - time.Minute) }
	assert.ErrorIs(t, s.Begin(ctx, "t1", "x", false), output.ErrTaskRunning)

	// Past the threshold: the row is reclaimed without force.
	s.now = func() time.Time { return now.Add(DefaultStaleAfter + time.Minute) }
	require.NoError(t, s.Begin(ctx, "t1", "x", false))
}

func TestSaveResultUnknownTask(t *testing.T) {
	s := New()
	err := s.SaveResult(context.Background(), "ghost", finishedResult())
	assert.ErrorIs(t, err, output.ErrNotFound)
}

func TestGetUnknownTask(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, output.ErrNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Begin(ctx, "t1", "x", false))

	rec, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	rec.Status = entity.TaskStatusFailed

	again, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusRunning, again.Status)
}

func TestResetStale(t *testing.T) {
	s := New()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, s.Begin(ctx, "old", "x", false))

	s.now = func() time.Time { return now }
	require.NoError(t, s.Begin(ctx, "fresh", "x", false))

	n, err := s.ResetStale(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusCreated, rec.Status)

	rec, err = s.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusRunning, rec.Status)
}
