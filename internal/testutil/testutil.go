package testutil

import (
	"time"

	"glpibot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestSession creates a session in the given state
func NewTestSession(userID int64, state domain.State) *domain.Session {
	return &domain.Session{
		UserID:    userID,
		State:     state,
		UpdatedAt: time.Now(),
	}
}

// NewLoggedInSession creates an authenticated session
func NewLoggedInSession(userID int64, token string) *domain.Session {
	s := NewTestSession(userID, domain.StateLoggedIn)
	s.Login = "alice"
	s.Token = token
	return s
}

// NewTestTicket creates a ticket summary
func NewTestTicket(id int, title string, status domain.TicketStatus) domain.TicketSummary {
	return domain.TicketSummary{
		ID:       id,
		Title:    title,
		Status:   status,
		Priority: domain.PriorityMedium,
	}
}
