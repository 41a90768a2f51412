package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/repolens/repolens/pkg/models"
)

// FileStore persists one JSON file per report under a directory. Writes go
// through a temp file and rename so a crashed write never leaves a
// half-written entry behind.
type FileStore struct {
	dir string
}

// fileEntry is the on-disk envelope. Key is stored alongside the report so
// a hash collision in the filename is detected rather than served.
type fileEntry struct {
	Key       string                 `json:"key"`
	Timestamp time.Time              `json:"timestamp"`
	Report    *models.AnalysisReport `json:"report"`
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) entryPath(key string) string {
	sum := blake3.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".json")
}

func (s *FileStore) Get(key string) (*models.AnalysisReport, bool, error) {
	data, err := os.ReadFile(s.entryPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if entry.Key != key {
		return nil, false, nil
	}
	return entry.Report, true, nil
}

func (s *FileStore) Put(key string, report *models.AnalysisReport) error {
	entry := fileEntry{
		Key:       key,
		Timestamp: time.Now().UTC(),
		Report:    report,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	path := s.entryPath(key)
	tmp, err := os.CreateTemp(s.dir, ".entry-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}
