package memory

import (
	"context"
	"sync"

	"sdg-quest/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore.
type ScoreStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		byUser: make(map[string][]domain.ScoreRecord),
	}
}

func (s *ScoreStore) Append(_ context.Context, record domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[record.UserID] = append(s.byUser[record.UserID], record)
	return nil
}

func (s *ScoreStore) ListByUser(_ context.Context, userID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byUser[userID]
	out := make([]domain.ScoreRecord, len(records))
	copy(out, records)
	return out, nil
}
