package handler

import (
	"testing"

	"glpibot/internal/domain"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "Printer broken",
			expected: "Printer broken",
		},
		{
			name:     "string with whitespace",
			input:    "  Printer broken  ",
			expected: "Printer broken",
		},
		{
			name:     "newlines are kept",
			input:    "No toner\nin tray 2",
			expected: "No toner\nin tray 2",
		},
		{
			name:     "string with tab",
			input:    "No\ttoner",
			expected: "Notoner",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "alice\x00\u200b",
			expected: "alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanText(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClassify(t *testing.T) {
	sender := &tele.User{ID: 42, Username: "alice"}

	tests := []struct {
		name     string
		message  *tele.Message
		expected domain.InboundMessage
	}{
		{
			name:    "plain text",
			message: &tele.Message{Sender: sender, Text: "Printer broken"},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Text: "Printer broken", Raw: "Printer broken", Kind: domain.ContentText,
			},
		},
		{
			name:    "command",
			message: &tele.Message{Sender: sender, Text: "/start"},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Text: "/start", Raw: "/start", Kind: domain.ContentText,
				IsCommand: true, Command: "start",
			},
		},
		{
			name:    "command with mention and payload",
			message: &tele.Message{Sender: sender, Text: "/Tickets@glpi_bot all"},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Text: "/Tickets@glpi_bot all", Raw: "/Tickets@glpi_bot all", Kind: domain.ContentText,
				IsCommand: true, Command: "tickets",
			},
		},
		{
			name:    "lone slash is text",
			message: &tele.Message{Sender: sender, Text: "/"},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Text: "/", Raw: "/", Kind: domain.ContentText,
			},
		},
		{
			name:    "raw text keeps padding",
			message: &tele.Message{Sender: sender, Text: " pa ss\t"},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Text: "pa ss", Raw: " pa ss\t", Kind: domain.ContentText,
			},
		},
		{
			name:    "photo with caption",
			message: &tele.Message{Sender: sender, Photo: &tele.Photo{}, Caption: "/start"},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Kind: domain.ContentNonText,
			},
		},
		{
			name:    "sticker",
			message: &tele.Message{Sender: sender, Sticker: &tele.Sticker{}},
			expected: domain.InboundMessage{
				UserID: 42, Username: "alice", Kind: domain.ContentNonText,
			},
		},
		{
			name:     "nil message",
			message:  nil,
			expected: domain.InboundMessage{Kind: domain.ContentNonText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.message))
		})
	}
}
