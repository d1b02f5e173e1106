package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"glpibot/internal/domain"
	"glpibot/internal/testutil"
	"glpibot/internal/ticketing"

	"github.com/stretchr/testify/assert"
)

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		login         string
		password      string
		callsBackend  bool
		mockToken     string
		mockError     error
		expectedToken string
		expectedError error
	}{
		{
			name:          "valid credentials",
			login:         "alice",
			password:      "secret",
			callsBackend:  true,
			mockToken:     "tok",
			expectedToken: "tok",
		},
		{
			name:          "rejected credentials",
			login:         "alice",
			password:      "wrong",
			callsBackend:  true,
			mockError:     ticketing.ErrInvalidCredentials,
			expectedError: ticketing.ErrInvalidCredentials,
		},
		{
			name:          "blank login never reaches backend",
			login:         "  ",
			password:      "secret",
			expectedError: ticketing.ErrInvalidCredentials,
		},
		{
			name:          "empty password never reaches backend",
			login:         "alice",
			password:      "",
			expectedError: ticketing.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(testutil.MockBackend)
			if tt.callsBackend {
				backend.On("Authenticate", tt.login, tt.password).Return(tt.mockToken, tt.mockError)
			}

			service := NewAuthService(backend, new(testutil.MockWatchRepository), time.Second, testutil.NewTestLogger())

			token, err := service.Login(context.Background(), tt.login, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}

			backend.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		logoutError   error
		clearError    error
		expectedError bool
	}{
		{
			name:  "authenticated user",
			token: "tok",
		},
		{
			name:  "user without backend session",
			token: "",
		},
		{
			name:          "backend error is reported",
			token:         "tok",
			logoutError:   fmt.Errorf("network down"),
			expectedError: true,
		},
		{
			name:          "watch cleanup error is reported",
			token:         "tok",
			clearError:    fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(testutil.MockBackend)
			watches := new(testutil.MockWatchRepository)

			if tt.token != "" {
				backend.On("Logout", tt.token).Return(tt.logoutError)
			}
			watches.On("ClearUser", int64(123)).Return(tt.clearError)

			service := NewAuthService(backend, watches, time.Second, testutil.NewTestLogger())

			session := testutil.NewTestSession(123, domain.StateLoggedIn)
			session.Token = tt.token

			err := service.Logout(context.Background(), session)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			backend.AssertExpectations(t)
			watches.AssertExpectations(t)
		})
	}
}
