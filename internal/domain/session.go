package domain

import "time"

// Session is everything the bot remembers about one user between messages.
// Login survives the step between login and password prompts, Token is the
// backend session once authenticated, Draft accumulates ticket fields.
type Session struct {
	UserID    int64
	State     State
	Login     string
	Token     string
	Draft     TicketDraft
	UpdatedAt time.Time
}

// NewSession creates an anonymous session for a user
func NewSession(userID int64) *Session {
	return &Session{
		UserID: userID,
		State:  StateAnonymous,
	}
}

// Reset drops all flow data and returns the session to anonymous state
func (s *Session) Reset() {
	*s = Session{UserID: s.UserID, State: StateAnonymous}
}

// Transition moves the session to the given state
func (s *Session) Transition(state State) {
	s.State = state
	s.UpdatedAt = time.Now()
}
