package handler

import (
	"context"
	"errors"
	"fmt"

	"glpibot/internal/domain"
	"glpibot/internal/ticketing"

	"go.uber.org/zap"
)

func (h *Handler) handleAdd(ctx context.Context, s *domain.Session, _ domain.InboundMessage) error {
	s.Draft = domain.TicketDraft{}
	s.Transition(domain.StateAwaitingTicketTitle)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	h.reply(s.UserID, textTitlePrompt)
	return nil
}

func (h *Handler) handleTicketTitle(ctx context.Context, s *domain.Session, msg domain.InboundMessage) error {
	if msg.Text == "" {
		h.reply(s.UserID, textEmptyField)
		return nil
	}

	s.Draft.Title = msg.Text
	s.Transition(domain.StateAwaitingTicketDescription)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	h.reply(s.UserID, textDescriptionPrompt)
	return nil
}

func (h *Handler) handleTicketDescription(ctx context.Context, s *domain.Session, msg domain.InboundMessage) error {
	if msg.Text == "" {
		h.reply(s.UserID, textEmptyField)
		return nil
	}

	s.Draft.Description = msg.Text
	s.Transition(domain.StateAwaitingTicketPriority)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	h.reply(s.UserID, textPriorityPrompt, priorityMarkup())
	return nil
}

// handleTicketPriority submits the ticket. Invalid input and backend
// failures keep the draft and ask for the priority again.
func (h *Handler) handleTicketPriority(ctx context.Context, s *domain.Session, msg domain.InboundMessage) error {
	priority, err := h.tickets.ParsePriority(msg.Text)
	if err != nil {
		h.reply(s.UserID, textInvalidPriority, priorityMarkup())
		return nil
	}

	id, err := h.tickets.Submit(ctx, s.Token, s.Draft, priority)
	switch {
	case errors.Is(err, ticketing.ErrUnauthorized):
		return h.expire(ctx, s)
	case errors.Is(err, domain.ErrEmptyField):
		// draft lost a field somehow, start over from the title
		s.Draft = domain.TicketDraft{}
		s.Transition(domain.StateAwaitingTicketTitle)
		if err := h.save(ctx, s); err != nil {
			return err
		}
		h.reply(s.UserID, textTitlePrompt, removeKeyboard())
		return nil
	case err != nil:
		h.logger.Error("Failed to create ticket", zap.Error(err), zap.Int64("user_id", s.UserID))
		h.reply(s.UserID, textSubmitFailed, priorityMarkup())
		return nil
	}

	title := s.Draft.Title
	s.Draft = domain.TicketDraft{}
	s.Transition(domain.StateLoggedIn)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	h.logger.Info("Ticket created",
		zap.Int64("user_id", s.UserID),
		zap.Int("ticket_id", id),
		zap.String("priority", priority.String()),
	)
	h.reply(s.UserID, fmt.Sprintf(textTicketCreated, id, title), removeKeyboard())
	return nil
}

func (h *Handler) handleTickets(ctx context.Context, s *domain.Session, _ domain.InboundMessage) error {
	tickets, err := h.tickets.List(ctx, s.Token)
	switch {
	case errors.Is(err, ticketing.ErrUnauthorized):
		return h.expire(ctx, s)
	case err != nil:
		h.logger.Error("Failed to list tickets", zap.Error(err), zap.Int64("user_id", s.UserID))
		h.reply(s.UserID, textTicketsFailed)
		return nil
	}

	h.reply(s.UserID, ticketListText(tickets))
	return nil
}

// expire forgets a session whose backend token is no longer accepted
func (h *Handler) expire(ctx context.Context, s *domain.Session) error {
	h.logger.Warn("Backend session expired", zap.Int64("user_id", s.UserID))

	if err := h.store.Clear(ctx, s.UserID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	h.reply(s.UserID, textSessionExpired, removeKeyboard())
	return nil
}
