package screenshots

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	path, err := store.Save("task-1", []byte("jpegdata"))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "task-1_")
	assert.True(t, strings.HasSuffix(path, ".jpeg"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), data)
}

func TestSaveDetectsPNG(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, []byte("body")...)
	path, err := store.Save("task-1", png)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".png"))
}

func TestSaveDataURI(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	payload := []byte("image bytes")
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)

	path, err := store.SaveDataURI("task-2", uri)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestSaveDataURIRejectsGarbage(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveDataURI("task-3", "not a data uri")
	assert.Error(t, err)

	_, err = store.SaveDataURI("task-3", "data:image/png;base64,!!!not-base64!!!")
	assert.Error(t, err)
}

func TestSaveSanitizesTaskID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save("../weird id", []byte("x"))
	require.NoError(t, err)
	assert.NotContains(t, filepath.Base(path), "/")
	assert.NotContains(t, filepath.Base(path), " ")
}

func TestUniquePathsForSameTask(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save("t", []byte("1"))
	require.NoError(t, err)
	b, err := store.Save("t", []byte("2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
