package cache

import (
	"sync"

	"github.com/repolens/repolens/pkg/models"
)

// MemoryStore keeps reports in process memory. Entries are held in their
// serialized form so callers can mutate returned reports without corrupting
// the store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) (*models.AnalysisReport, bool, error) {
	s.mu.RLock()
	data, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	report, err := models.UnmarshalReport(data)
	if err != nil {
		return nil, false, err
	}
	return report, true, nil
}

func (s *MemoryStore) Put(key string, report *models.AnalysisReport) error {
	data, err := report.Marshal()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[key] = data
	s.mu.Unlock()
	return nil
}
