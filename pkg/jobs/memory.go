package jobs

import (
	"sync"
	"time"

	"github.com/mobsec-labs/secrethunter/pkg/scanner/types"
)

// DefaultListLimit bounds List calls that pass a non-positive limit.
const DefaultListLimit = 50

// MemoryStore is an in-memory Store implementation. Reads and writes for
// different jobs never block each other beyond the map lock; terminal
// transitions are enforced per record.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // creation order, oldest first
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Create(id, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return ErrDuplicateJob
	}

	s.records[id] = &Record{
		ID:        id,
		Filename:  filename,
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.order = append(s.order, id)
	return nil
}

func (s *MemoryStore) MarkRunning(id string) error {
	return s.transition(id, StatusRunning, nil, "")
}

func (s *MemoryStore) Complete(id string, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	return s.transition(id, StatusDone, findings, "")
}

func (s *MemoryStore) Fail(id, detail string) error {
	return s.transition(id, StatusFailed, nil, detail)
}

func (s *MemoryStore) transition(id string, next Status, findings []types.Finding, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[id]
	if !exists {
		return ErrUnknownJob
	}
	if record.Status.Terminal() {
		return ErrJobTerminal
	}

	record.Status = next
	if next == StatusDone {
		record.Findings = findings
	}
	if next == StatusFailed {
		record.Error = detail
	}
	return nil
}

func (s *MemoryStore) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return Record{}, ErrUnknownJob
	}
	return *record, nil
}

func (s *MemoryStore) List(limit int) []Summary {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]Summary, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(summaries) < limit; i-- {
		record := s.records[s.order[i]]
		summaries = append(summaries, Summary{
			ID:        record.ID,
			Filename:  record.Filename,
			Status:    record.Status,
			CreatedAt: record.CreatedAt,
		})
	}
	return summaries
}
