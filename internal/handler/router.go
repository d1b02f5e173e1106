package handler

import (
	"context"

	"glpibot/internal/domain"
)

// HandlerFunc runs a route. Handlers own the session: they mutate and save it.
type HandlerFunc func(ctx context.Context, session *domain.Session, msg domain.InboundMessage) error

// Route pairs a predicate over (message, state) with its handler
type Route struct {
	Name   string
	Match  func(msg domain.InboundMessage, state domain.State) bool
	Handle HandlerFunc
}

// Router selects the first route matching a message. Order matters:
// global commands, then flow handlers, then LoggedIn commands, then catch-alls.
type Router struct {
	routes []Route
}

// NewRouter creates a router with routes in priority order
func NewRouter(routes ...Route) *Router {
	return &Router{routes: routes}
}

// Dispatch returns the first matching route. It never touches state.
func (r *Router) Dispatch(msg domain.InboundMessage, state domain.State) (Route, bool) {
	for _, route := range r.routes {
		if route.Match(msg, state) {
			return route, true
		}
	}
	return Route{}, false
}

// Routes returns route names in priority order
func (r *Router) Routes() []string {
	names := make([]string, 0, len(r.routes))
	for _, route := range r.routes {
		names = append(names, route.Name)
	}
	return names
}

func command(name string) func(domain.InboundMessage, domain.State) bool {
	return func(msg domain.InboundMessage, _ domain.State) bool {
		return msg.IsCommand && msg.Command == name
	}
}

func commandIn(name string, want domain.State) func(domain.InboundMessage, domain.State) bool {
	return func(msg domain.InboundMessage, state domain.State) bool {
		return msg.IsCommand && msg.Command == name && state == want
	}
}

func textIn(want domain.State) func(domain.InboundMessage, domain.State) bool {
	return func(msg domain.InboundMessage, state domain.State) bool {
		return msg.Kind == domain.ContentText && !msg.IsCommand && state == want
	}
}

func commandInFlow(msg domain.InboundMessage, state domain.State) bool {
	return msg.IsCommand && (state.InOnboarding() || state.InTicketFlow())
}

func anyText(msg domain.InboundMessage, _ domain.State) bool {
	return msg.Kind == domain.ContentText
}

func anyNonText(msg domain.InboundMessage, _ domain.State) bool {
	return msg.Kind == domain.ContentNonText
}
