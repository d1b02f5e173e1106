package handler

import (
	"context"
	"errors"

	"glpibot/internal/domain"
	"glpibot/internal/ticketing"

	"go.uber.org/zap"
)

func (h *Handler) handleLogin(ctx context.Context, s *domain.Session, msg domain.InboundMessage) error {
	if msg.Text == "" {
		h.reply(s.UserID, textLoginEmpty)
		return nil
	}

	s.Login = msg.Text
	s.Transition(domain.StateAwaitingPassword)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	h.reply(s.UserID, textPasswordPrompt)
	return nil
}

// handlePassword authenticates against the backend with the password as
// typed. Any failure sends the user back to the login prompt.
func (h *Handler) handlePassword(ctx context.Context, s *domain.Session, msg domain.InboundMessage) error {
	token, err := h.auth.Login(ctx, s.Login, msg.Raw)
	if err != nil {
		text := textGLPIDown
		if errors.Is(err, ticketing.ErrInvalidCredentials) {
			text = textWrongLogin
			h.logger.Info("Authentication rejected", zap.Int64("user_id", s.UserID), zap.String("login", s.Login))
		} else {
			h.logger.Error("Authentication failed", zap.Error(err), zap.Int64("user_id", s.UserID))
		}

		s.Login = ""
		s.Transition(domain.StateAwaitingLogin)
		if err := h.save(ctx, s); err != nil {
			return err
		}
		h.reply(s.UserID, text)
		return nil
	}

	s.Token = token
	s.Transition(domain.StateLoggedIn)
	if err := h.save(ctx, s); err != nil {
		return err
	}

	h.logger.Info("User authorized", zap.Int64("user_id", s.UserID), zap.String("login", s.Login))
	h.reply(s.UserID, loggedInText(s.Login))
	return nil
}
