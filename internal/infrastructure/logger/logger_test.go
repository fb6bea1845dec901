package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFileSink(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.LogFile = filepath.Join(dir, "agent.log")

	log, err := New(cfg)
	require.NoError(t, err)

	log.Info("task started", "task_id", "t1")
	log.Close()

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "task started")
	assert.Contains(t, string(data), "t1")
}

func TestNewBadLevelFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "chatty"

	log, err := New(cfg)
	require.NoError(t, err)
	log.Info("still works")
	log.Close()
}

func TestWithFieldReturnsChild(t *testing.T) {
	log := NewNop()
	child := log.WithField("task_id", "t1")
	require.NotNil(t, child)
	child.Debug("child log")

	fields := log.WithFields(map[string]any{"a": 1, "b": 2})
	require.NotNil(t, fields)
	fields.Warn("fields log")
}
