package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"glpibot/internal/domain"
)

// StateStore implements repository.StateStore in process memory.
// Sessions are stored by value so callers never share a record.
type StateStore struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session
}

func NewStateStore() *StateStore {
	return &StateStore{
		sessions: make(map[int64]domain.Session),
	}
}

func (s *StateStore) Get(_ context.Context, userID int64) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return domain.NewSession(userID), nil
	}
	return &sess, nil
}

func (s *StateStore) Set(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	stored.UpdatedAt = time.Now()
	s.sessions[session.UserID] = stored
	return nil
}

func (s *StateStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

func (s *StateStore) ListAuthenticated(_ context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Session
	for _, sess := range s.sessions {
		if sess.Token == "" {
			continue
		}
		sess := sess
		result = append(result, &sess)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}
