package ticketing

import (
	"context"
	"errors"

	"glpibot/internal/domain"
)

var (
	// ErrInvalidCredentials is returned when login or password is rejected
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrUnauthorized is returned when a session token is no longer accepted
	ErrUnauthorized = errors.New("session is not authorized")
)

// Backend is the ticketing system the bot talks to
type Backend interface {
	Authenticate(ctx context.Context, login, password string) (token string, err error)
	Logout(ctx context.Context, token string) error
	CreateTicket(ctx context.Context, token string, ticket domain.Ticket) (id int, err error)
	ListTickets(ctx context.Context, token string) ([]domain.TicketSummary, error)
}
