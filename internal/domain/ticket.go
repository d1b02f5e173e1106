package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrEmptyField      = errors.New("field cannot be empty")
)

// Priority follows GLPI urgency scale
type Priority int

const (
	PriorityVeryLow Priority = iota + 1
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityVeryHigh
	PriorityMajor
)

var priorityLabels = map[Priority]string{
	PriorityVeryLow:  "Very low",
	PriorityLow:      "Low",
	PriorityMedium:   "Medium",
	PriorityHigh:     "High",
	PriorityVeryHigh: "Very high",
	PriorityMajor:    "Major",
}

// Valid reports whether p is within GLPI scale
func (p Priority) Valid() bool {
	return p >= PriorityVeryLow && p <= PriorityMajor
}

func (p Priority) String() string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return "Unknown"
}

// PriorityTable maps user input (lowercased) to priorities
type PriorityTable map[string]Priority

// DefaultPriorities returns English and Russian priority names
func DefaultPriorities() PriorityTable {
	return PriorityTable{
		"very low":      PriorityVeryLow,
		"очень низкий":  PriorityVeryLow,
		"low":           PriorityLow,
		"низкий":        PriorityLow,
		"medium":        PriorityMedium,
		"средний":       PriorityMedium,
		"high":          PriorityHigh,
		"высокий":       PriorityHigh,
		"very high":     PriorityVeryHigh,
		"очень высокий": PriorityVeryHigh,
		"major":         PriorityMajor,
		"наивысший":     PriorityMajor,
	}
}

// WithAliases returns a copy of the table extended with extra names.
// Aliases pointing outside GLPI scale are rejected.
func (t PriorityTable) WithAliases(aliases map[string]int) (PriorityTable, error) {
	out := make(PriorityTable, len(t)+len(aliases))
	for name, p := range t {
		out[name] = p
	}
	for name, value := range aliases {
		p := Priority(value)
		if !p.Valid() {
			return nil, ErrInvalidPriority
		}
		out[normalizePriority(name)] = p
	}
	return out, nil
}

// Parse accepts a number from 1 to 6 or a known priority name
func (t PriorityTable) Parse(input string) (Priority, error) {
	key := normalizePriority(input)
	if key == "" {
		return 0, ErrInvalidPriority
	}

	if n, err := strconv.Atoi(key); err == nil {
		p := Priority(n)
		if !p.Valid() {
			return 0, ErrInvalidPriority
		}
		return p, nil
	}

	p, ok := t[key]
	if !ok {
		return 0, ErrInvalidPriority
	}
	return p, nil
}

func normalizePriority(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TicketDraft holds ticket fields collected so far
type TicketDraft struct {
	Title       string
	Description string
}

// Ticket is a complete ticket ready for submission
type Ticket struct {
	Title       string
	Description string
	Priority    Priority
}

// NewTicket validates the draft and assembles a ticket
func NewTicket(draft TicketDraft, priority Priority) (Ticket, error) {
	title := strings.TrimSpace(draft.Title)
	description := strings.TrimSpace(draft.Description)
	if title == "" || description == "" {
		return Ticket{}, ErrEmptyField
	}
	if !priority.Valid() {
		return Ticket{}, ErrInvalidPriority
	}
	return Ticket{
		Title:       title,
		Description: description,
		Priority:    priority,
	}, nil
}

// TicketStatus follows GLPI ticket status codes
type TicketStatus int

const (
	TicketStatusNew TicketStatus = iota + 1
	TicketStatusAssigned
	TicketStatusPlanned
	TicketStatusPending
	TicketStatusSolved
	TicketStatusClosed
)

func (s TicketStatus) String() string {
	switch s {
	case TicketStatusNew:
		return "Новая"
	case TicketStatusAssigned:
		return "В работе (назначена)"
	case TicketStatusPlanned:
		return "В работе (запланирована)"
	case TicketStatusPending:
		return "Ожидает"
	case TicketStatusSolved:
		return "Решена"
	case TicketStatusClosed:
		return "Закрыта"
	}
	return "Неизвестно"
}

// TicketSummary is a short view of a ticket for listings
type TicketSummary struct {
	ID        int
	Title     string
	Status    TicketStatus
	Priority  Priority
	UpdatedAt time.Time
}
