package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"glpibot/internal/domain"
	"glpibot/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestTicketService_Submit(t *testing.T) {
	tests := []struct {
		name          string
		draft         domain.TicketDraft
		priority      domain.Priority
		callsBackend  bool
		mockID        int
		mockError     error
		expectedID    int
		expectedError bool
	}{
		{
			name:         "complete ticket",
			draft:        domain.TicketDraft{Title: "Printer broken", Description: "No toner"},
			priority:     domain.PriorityHigh,
			callsBackend: true,
			mockID:       42,
			expectedID:   42,
		},
		{
			name:          "backend error",
			draft:         domain.TicketDraft{Title: "Printer broken", Description: "No toner"},
			priority:      domain.PriorityHigh,
			callsBackend:  true,
			mockError:     fmt.Errorf("backend down"),
			expectedError: true,
		},
		{
			name:          "empty title",
			draft:         domain.TicketDraft{Description: "No toner"},
			priority:      domain.PriorityHigh,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(testutil.MockBackend)
			if tt.callsBackend {
				backend.On("CreateTicket", "tok", domain.Ticket{
					Title:       tt.draft.Title,
					Description: tt.draft.Description,
					Priority:    tt.priority,
				}).Return(tt.mockID, tt.mockError)
			}

			service := NewTicketService(backend, nil, time.Second)

			id, err := service.Submit(context.Background(), "tok", tt.draft, tt.priority)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}

			backend.AssertExpectations(t)
		})
	}
}

func TestTicketService_List(t *testing.T) {
	backend := new(testutil.MockBackend)
	tickets := []domain.TicketSummary{testutil.NewTestTicket(1, "VPN", domain.TicketStatusNew)}
	backend.On("ListTickets", "tok").Return(tickets, nil)

	service := NewTicketService(backend, nil, 0)

	result, err := service.List(context.Background(), "tok")

	assert.NoError(t, err)
	assert.Equal(t, tickets, result)
	backend.AssertExpectations(t)
}

func TestTicketService_ParsePriority(t *testing.T) {
	table, err := domain.DefaultPriorities().WithAliases(map[string]int{"asap": 6})
	assert.NoError(t, err)

	service := NewTicketService(new(testutil.MockBackend), table, time.Second)

	p, err := service.ParsePriority("ASAP")
	assert.NoError(t, err)
	assert.Equal(t, domain.PriorityMajor, p)

	_, err = service.ParsePriority("later")
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
}
