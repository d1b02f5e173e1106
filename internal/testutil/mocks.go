package testutil

import (
	"context"

	"glpibot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock for ticketing.Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Authenticate(ctx context.Context, login, password string) (string, error) {
	args := m.Called(login, password)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Logout(ctx context.Context, token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockBackend) CreateTicket(ctx context.Context, token string, ticket domain.Ticket) (int, error) {
	args := m.Called(token, ticket)
	return args.Int(0), args.Error(1)
}

func (m *MockBackend) ListTickets(ctx context.Context, token string) ([]domain.TicketSummary, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketSummary), args.Error(1)
}

// MockSender is a mock for outbound messages. Options are not recorded.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(userID int64, text string, opts ...interface{}) error {
	args := m.Called(userID, text)
	return args.Error(0)
}

// Texts returns every text sent to the user, in order
func (m *MockSender) Texts(userID int64) []string {
	var texts []string
	for _, call := range m.Calls {
		if call.Method == "Send" && call.Arguments.Get(0).(int64) == userID {
			texts = append(texts, call.Arguments.String(1))
		}
	}
	return texts
}

// MockWatchRepository is a mock for repository.WatchRepository
type MockWatchRepository struct {
	mock.Mock
}

func (m *MockWatchRepository) GetStatus(ctx context.Context, userID int64, ticketID int) (domain.TicketStatus, bool, error) {
	args := m.Called(userID, ticketID)
	return args.Get(0).(domain.TicketStatus), args.Bool(1), args.Error(2)
}

func (m *MockWatchRepository) SaveStatus(ctx context.Context, userID int64, ticketID int, status domain.TicketStatus) error {
	args := m.Called(userID, ticketID, status)
	return args.Error(0)
}

func (m *MockWatchRepository) ClearUser(ctx context.Context, userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}
