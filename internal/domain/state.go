package domain

// State represents user's position within a conversation flow
type State string

const (
	StateAnonymous                 State = "anonymous"
	StateAwaitingLogin             State = "awaiting_login"
	StateAwaitingPassword          State = "awaiting_password"
	StateLoggedIn                  State = "logged_in"
	StateAwaitingTicketTitle       State = "awaiting_ticket_title"
	StateAwaitingTicketDescription State = "awaiting_ticket_description"
	StateAwaitingTicketPriority    State = "awaiting_ticket_priority"
)

// States lists every conversation state
var States = []State{
	StateAnonymous,
	StateAwaitingLogin,
	StateAwaitingPassword,
	StateLoggedIn,
	StateAwaitingTicketTitle,
	StateAwaitingTicketDescription,
	StateAwaitingTicketPriority,
}

// Valid reports whether s is one of the known states
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// InOnboarding reports whether the user is in the middle of logging in
func (s State) InOnboarding() bool {
	return s == StateAwaitingLogin || s == StateAwaitingPassword
}

// InTicketFlow reports whether the user is in the middle of creating a ticket
func (s State) InTicketFlow() bool {
	switch s {
	case StateAwaitingTicketTitle, StateAwaitingTicketDescription, StateAwaitingTicketPriority:
		return true
	}
	return false
}

// Authenticated reports whether the state implies a live backend session
func (s State) Authenticated() bool {
	return s == StateLoggedIn || s.InTicketFlow()
}
