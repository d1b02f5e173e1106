package repository

import (
	"context"

	"glpibot/internal/domain"
)

// StateStore keeps one conversation session per user.
// Every operation is atomic for a single user id.
type StateStore interface {
	// Get returns user's session, or a fresh anonymous one if none exists
	Get(ctx context.Context, userID int64) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context, userID int64) error
	// ListAuthenticated returns sessions holding a backend token
	ListAuthenticated(ctx context.Context) ([]*domain.Session, error)
}

// WatchRepository remembers the last seen status of user's tickets
type WatchRepository interface {
	GetStatus(ctx context.Context, userID int64, ticketID int) (domain.TicketStatus, bool, error)
	SaveStatus(ctx context.Context, userID int64, ticketID int, status domain.TicketStatus) error
	ClearUser(ctx context.Context, userID int64) error
}
