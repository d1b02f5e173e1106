package handler

import (
	"context"
	"fmt"
	"sync"

	"glpibot/internal/domain"
	"glpibot/internal/middleware"
	"glpibot/internal/repository"
	"glpibot/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Sender delivers a message to a user's private chat
type Sender interface {
	Send(userID int64, text string, opts ...interface{}) error
}

// Handler manages all bot interactions
type Handler struct {
	store   repository.StateStore
	auth    *service.AuthService
	tickets *service.TicketService
	sender  Sender
	router  *Router
	logger  *zap.Logger

	// One lock per user, so a user's transitions never interleave.
	// Entries live only while a message of that user is in flight.
	locks   map[int64]*userLock
	locksMu sync.Mutex
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewHandler creates a new handler instance
func NewHandler(
	store repository.StateStore,
	auth *service.AuthService,
	tickets *service.TicketService,
	sender Sender,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		store:   store,
		auth:    auth,
		tickets: tickets,
		sender:  sender,
		logger:  logger,
		locks:   make(map[int64]*userLock),
	}

	h.router = NewRouter(
		// Global commands, any state
		Route{Name: "start", Match: command("start"), Handle: h.handleStart},
		Route{Name: "help", Match: command("help"), Handle: h.handleHelp},
		Route{Name: "logout", Match: command("logout"), Handle: h.handleLogout},

		// Flow steps
		Route{Name: "login", Match: textIn(domain.StateAwaitingLogin), Handle: h.handleLogin},
		Route{Name: "password", Match: textIn(domain.StateAwaitingPassword), Handle: h.handlePassword},
		Route{Name: "ticket_title", Match: textIn(domain.StateAwaitingTicketTitle), Handle: h.handleTicketTitle},
		Route{Name: "ticket_description", Match: textIn(domain.StateAwaitingTicketDescription), Handle: h.handleTicketDescription},
		Route{Name: "ticket_priority", Match: textIn(domain.StateAwaitingTicketPriority), Handle: h.handleTicketPriority},
		Route{Name: "cancel", Match: commandInFlow, Handle: h.handleCancel},

		// Authenticated commands
		Route{Name: "tickets", Match: commandIn("tickets", domain.StateLoggedIn), Handle: h.handleTickets},
		Route{Name: "add", Match: commandIn("add", domain.StateLoggedIn), Handle: h.handleAdd},

		// Catch-alls
		Route{Name: "text", Match: anyText, Handle: h.handleUnknownText},
		Route{Name: "non_text", Match: anyNonText, Handle: h.handleNonText},
	)

	return h
}

// Router exposes the route table
func (h *Handler) Router() *Router {
	return h.router
}

// RegisterHandlers registers message endpoints on the bot
func (h *Handler) RegisterHandlers(bot *tele.Bot) {
	bot.Handle(tele.OnText, h.onMessage)

	for _, endpoint := range []string{
		tele.OnMedia,
		tele.OnContact,
		tele.OnLocation,
		tele.OnVenue,
		tele.OnDice,
		tele.OnPoll,
	} {
		bot.Handle(endpoint, h.onMessage)
	}
}

func (h *Handler) onMessage(c tele.Context) error {
	msg := Classify(c.Message())
	if err := h.Handle(context.Background(), msg); err != nil {
		return fmt.Errorf("trace %s: %w", middleware.TraceID(c), err)
	}
	return nil
}

// Handle routes one message and runs its handler under the user's lock
func (h *Handler) Handle(ctx context.Context, msg domain.InboundMessage) error {
	unlock := h.lockUser(msg.UserID)
	defer unlock()

	session, err := h.store.Get(ctx, msg.UserID)
	if err != nil {
		h.logger.Error("Failed to load session", zap.Error(err), zap.Int64("user_id", msg.UserID))
		h.reply(msg.UserID, textError)
		return fmt.Errorf("load session: %w", err)
	}

	route, ok := h.router.Dispatch(msg, session.State)
	if !ok {
		return fmt.Errorf("no route for %s message in state %s", msg.Kind, session.State)
	}

	h.logger.Debug("Dispatching message",
		zap.Int64("user_id", msg.UserID),
		zap.String("state", string(session.State)),
		zap.String("route", route.Name),
	)

	if err := route.Handle(ctx, session, msg); err != nil {
		h.logger.Error("Handler failed",
			zap.Error(err),
			zap.Int64("user_id", msg.UserID),
			zap.String("route", route.Name),
		)
		h.reply(msg.UserID, textError)
		return fmt.Errorf("%s: %w", route.Name, err)
	}
	return nil
}

// lockUser takes the user's lock and returns its release func
func (h *Handler) lockUser(userID int64) func() {
	h.locksMu.Lock()
	lock, exists := h.locks[userID]
	if !exists {
		lock = &userLock{}
		h.locks[userID] = lock
	}
	lock.refs++
	h.locksMu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		h.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(h.locks, userID)
		}
		h.locksMu.Unlock()
	}
}

// activeLocks returns the number of users with a message in flight
func (h *Handler) activeLocks() int {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	return len(h.locks)
}

// save stores the session after a transition
func (h *Handler) save(ctx context.Context, session *domain.Session) error {
	if err := h.store.Set(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// reply sends a message; delivery failures are logged, never fatal to the flow
func (h *Handler) reply(userID int64, text string, opts ...interface{}) {
	if err := h.sender.Send(userID, text, opts...); err != nil {
		h.logger.Warn("Failed to send message", zap.Error(err), zap.Int64("user_id", userID))
	}
}
