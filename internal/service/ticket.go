package service

import (
	"context"
	"time"

	"glpibot/internal/domain"
	"glpibot/internal/ticketing"
)

// TicketService handles ticket-related business logic
type TicketService struct {
	backend    ticketing.Backend
	priorities domain.PriorityTable
	timeout    time.Duration
}

// NewTicketService creates a new ticket service
func NewTicketService(backend ticketing.Backend, priorities domain.PriorityTable, timeout time.Duration) *TicketService {
	if priorities == nil {
		priorities = domain.DefaultPriorities()
	}
	return &TicketService{
		backend:    backend,
		priorities: priorities,
		timeout:    timeout,
	}
}

// ParsePriority converts user input to a priority
func (s *TicketService) ParsePriority(input string) (domain.Priority, error) {
	return s.priorities.Parse(input)
}

// Submit validates the draft and creates a ticket, returning its id
func (s *TicketService) Submit(ctx context.Context, token string, draft domain.TicketDraft, priority domain.Priority) (int, error) {
	ticket, err := domain.NewTicket(draft, priority)
	if err != nil {
		return 0, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.backend.CreateTicket(ctx, token, ticket)
}

// List returns user's tickets
func (s *TicketService) List(ctx context.Context, token string) ([]domain.TicketSummary, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.backend.ListTickets(ctx, token)
}
