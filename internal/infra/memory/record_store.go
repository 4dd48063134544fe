package memory

import (
	"context"
	"sync"

	"trivia-live-service/internal/domain"
)

// RecordStore is an in-memory implementation of game.RecordStore, used when
// no Postgres is configured and in tests.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.SessionRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]domain.SessionRecord)}
}

func (s *RecordStore) Create(_ context.Context, rec domain.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.Code]; ok {
		return domain.ErrCodeTaken
	}
	s.records[rec.Code] = rec
	return nil
}

func (s *RecordStore) Get(_ context.Context, code string) (domain.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[code]
	if !ok {
		return domain.SessionRecord{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

func (s *RecordStore) UpdateStatus(_ context.Context, code, status string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[code]
	if !ok {
		return domain.ErrRecordNotFound
	}
	rec.Status = status
	rec.CurrentQuestionIndex = index
	s.records[code] = rec
	return nil
}
