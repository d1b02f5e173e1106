package handler

import (
	"context"
	"fmt"

	"glpibot/internal/domain"

	"go.uber.org/zap"
)

// handleStart resets the user to the login prompt from any state
func (h *Handler) handleStart(ctx context.Context, s *domain.Session, msg domain.InboundMessage) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", s.UserID),
		zap.String("username", msg.Username),
		zap.String("state", string(s.State)),
	)

	inFlow := s.State.InOnboarding() || s.State.InTicketFlow()

	if s.Token != "" {
		// errors are logged by the service, the local session is dropped anyway
		_ = h.auth.Logout(ctx, s)
	}

	s.Reset()
	s.Transition(domain.StateAwaitingLogin)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	if inFlow {
		h.reply(s.UserID, textCancelled)
	}
	h.reply(s.UserID, textGreeting, removeKeyboard())
	return nil
}

func (h *Handler) handleHelp(ctx context.Context, s *domain.Session, _ domain.InboundMessage) error {
	if _, err := h.abortFlow(ctx, s); err != nil {
		return err
	}

	if s.State.Authenticated() {
		h.reply(s.UserID, textHelpLoggedIn)
	} else {
		h.reply(s.UserID, textHelpAnonymous)
	}
	return nil
}

// handleLogout closes the backend session and forgets the user
func (h *Handler) handleLogout(ctx context.Context, s *domain.Session, _ domain.InboundMessage) error {
	text := textLoggedOut
	if s.Token != "" {
		if err := h.auth.Logout(ctx, s); err != nil {
			text = textLogoutIncomplete
		}
	}

	if err := h.store.Clear(ctx, s.UserID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	h.logger.Info("User logged out", zap.Int64("user_id", s.UserID), zap.Bool("clean", text == textLoggedOut))
	h.reply(s.UserID, text, removeKeyboard())
	return nil
}

// handleCancel aborts whatever flow a command interrupted
func (h *Handler) handleCancel(ctx context.Context, s *domain.Session, _ domain.InboundMessage) error {
	_, err := h.abortFlow(ctx, s)
	return err
}

// abortFlow drops partially captured flow data. Onboarding falls back to
// anonymous, ticket creation to LoggedIn. Reports whether a flow was aborted.
func (h *Handler) abortFlow(ctx context.Context, s *domain.Session) (bool, error) {
	switch {
	case s.State.InOnboarding():
		if err := h.store.Clear(ctx, s.UserID); err != nil {
			return false, fmt.Errorf("clear session: %w", err)
		}
		s.Reset()
		h.reply(s.UserID, textCancelled)
		return true, nil

	case s.State.InTicketFlow():
		s.Draft = domain.TicketDraft{}
		s.Transition(domain.StateLoggedIn)
		if err := h.save(ctx, s); err != nil {
			return false, err
		}
		h.reply(s.UserID, textTicketCancelled, removeKeyboard())
		return true, nil
	}
	return false, nil
}

// handleUnknownText answers text no flow is waiting for
func (h *Handler) handleUnknownText(_ context.Context, s *domain.Session, msg domain.InboundMessage) error {
	switch {
	case !s.State.Authenticated():
		h.reply(s.UserID, textStartHint)
	case msg.IsCommand:
		h.reply(s.UserID, textUnknownAction)
	default:
		h.reply(s.UserID, textUnknownInput)
	}
	return nil
}

func (h *Handler) handleNonText(_ context.Context, s *domain.Session, _ domain.InboundMessage) error {
	h.reply(s.UserID, textOnlyText)
	return nil
}
