package screenshots

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"taskagent/internal/application/port/output"
)

// FileStore writes screenshots to a directory on disk and returns their
// paths. Filenames embed the task ID and a timestamp so one task's captures
// sort chronologically.
type FileStore struct {
	dir string
	seq atomic.Uint64
}

var _ output.ScreenshotStorePort = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "taskagent-screenshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(taskID string, data []byte) (string, error) {
	ext := "jpeg"
	if len(data) > 8 && string(data[1:4]) == "PNG" {
		ext = "png"
	}
	name := fmt.Sprintf("%s_%d_%d.%s", sanitize(taskID),
		time.Now().UnixMilli(), s.seq.Add(1), ext)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

func (s *FileStore) SaveDataURI(taskID, uri string) (string, error) {
	idx := strings.Index(uri, "base64,")
	if !strings.HasPrefix(uri, "data:image/") || idx < 0 {
		return "", fmt.Errorf("not a base64 image data URI")
	}
	data, err := base64.StdEncoding.DecodeString(uri[idx+len("base64,"):])
	if err != nil {
		return "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return s.Save(taskID, data)
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}
