package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"glpibot/internal/domain"
	"glpibot/internal/repository"
	"glpibot/internal/ticketing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// AuthService handles backend authentication
type AuthService struct {
	backend ticketing.Backend
	watches repository.WatchRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	backend ticketing.Backend,
	watches repository.WatchRepository,
	timeout time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		backend: backend,
		watches: watches,
		timeout: timeout,
		logger:  logger,
	}
}

// Login opens a backend session and returns its token
func (s *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return "", ticketing.ErrInvalidCredentials
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return s.backend.Authenticate(ctx, login, password)
}

// Logout closes user's backend session and forgets watched tickets.
// The session record itself is left to the caller.
func (s *AuthService) Logout(ctx context.Context, session *domain.Session) error {
	var errs error

	if session.Token != "" {
		backendCtx, cancel := withTimeout(ctx, s.timeout)
		if err := s.backend.Logout(backendCtx, session.Token); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close backend session: %w", err))
		}
		cancel()
	}

	if err := s.watches.ClearUser(ctx, session.UserID); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("clear watched tickets: %w", err))
	}

	if errs != nil {
		s.logger.Warn("Logout finished with errors",
			zap.Int64("user_id", session.UserID),
			zap.Error(errs),
		)
	}
	return errs
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
