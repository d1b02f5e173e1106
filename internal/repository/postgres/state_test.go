package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"glpibot/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var sessionColumns = []string{"state", "login", "token", "draft_title", "draft_description", "updated_at"}

func TestStateRepo_Get(t *testing.T) {
	tests := []struct {
		name          string
		userID        int64
		mockRows      *sqlmock.Rows
		mockError     error
		expectedState domain.State
		expectedTitle string
		expectedError bool
	}{
		{
			name:   "session in ticket flow",
			userID: 123,
			mockRows: sqlmock.NewRows(sessionColumns).
				AddRow("awaiting_ticket_description", "alice", "tok", "Printer broken", "", time.Now()),
			expectedState: domain.StateAwaitingTicketDescription,
			expectedTitle: "Printer broken",
		},
		{
			name:          "no session yet",
			userID:        456,
			mockError:     sql.ErrNoRows,
			expectedState: domain.StateAnonymous,
		},
		{
			name:          "database error",
			userID:        789,
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
		{
			name:   "unknown state stored",
			userID: 123,
			mockRows: sqlmock.NewRows(sessionColumns).
				AddRow("dancing", "", "", "", "", time.Now()),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewStateRepo(db)

			query := "SELECT (.+) FROM sessions WHERE user_id = \\$1"

			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(tt.userID).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(tt.userID).WillReturnRows(tt.mockRows)
			}

			sess, err := repo.Get(context.Background(), tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, sess)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.userID, sess.UserID)
				assert.Equal(t, tt.expectedState, sess.State)
				assert.Equal(t, tt.expectedTitle, sess.Draft.Title)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStateRepo_Set(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewStateRepo(db)

	sess := &domain.Session{
		UserID: 123,
		State:  domain.StateAwaitingTicketPriority,
		Login:  "alice",
		Token:  "tok",
		Draft:  domain.TicketDraft{Title: "Printer broken", Description: "No toner"},
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(int64(123), "awaiting_ticket_priority", "alice", "tok", "Printer broken", "No toner").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Set(context.Background(), sess)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepo_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewStateRepo(db)

	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(int64(123)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Clear(context.Background(), 123)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepo_ListAuthenticated(t *testing.T) {
	tests := []struct {
		name          string
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name: "two sessions",
			mockRows: sqlmock.NewRows(append([]string{"user_id"}, sessionColumns...)).
				AddRow(1, "logged_in", "alice", "a", "", "", time.Now()).
				AddRow(2, "awaiting_ticket_title", "bob", "b", "", "", time.Now()),
			expectedCount: 2,
		},
		{
			name:          "no sessions",
			mockRows:      sqlmock.NewRows(append([]string{"user_id"}, sessionColumns...)),
			expectedCount: 0,
		},
		{
			name:          "query error",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
		{
			name: "scan error",
			mockRows: sqlmock.NewRows(append([]string{"user_id"}, sessionColumns...)).
				AddRow(1, "logged_in", "alice", "a", "", "", "not a time"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewStateRepo(db)

			query := "SELECT (.+) FROM sessions WHERE token"

			if tt.mockError != nil {
				mock.ExpectQuery(query).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WillReturnRows(tt.mockRows)
			}

			sessions, err := repo.ListAuthenticated(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, sessions, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
