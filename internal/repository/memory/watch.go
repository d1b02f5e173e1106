package memory

import (
	"context"
	"sync"

	"glpibot/internal/domain"
)

type watchKey struct {
	userID   int64
	ticketID int
}

// WatchRepository implements repository.WatchRepository in process memory
type WatchRepository struct {
	mu       sync.RWMutex
	statuses map[watchKey]domain.TicketStatus
}

func NewWatchRepository() *WatchRepository {
	return &WatchRepository{
		statuses: make(map[watchKey]domain.TicketStatus),
	}
}

func (r *WatchRepository) GetStatus(_ context.Context, userID int64, ticketID int) (domain.TicketStatus, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.statuses[watchKey{userID, ticketID}]
	return status, ok, nil
}

func (r *WatchRepository) SaveStatus(_ context.Context, userID int64, ticketID int, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.statuses[watchKey{userID, ticketID}] = status
	return nil
}

func (r *WatchRepository) ClearUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.statuses {
		if key.userID == userID {
			delete(r.statuses, key)
		}
	}
	return nil
}
