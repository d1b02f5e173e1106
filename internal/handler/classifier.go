package handler

import (
	"strings"
	"unicode"

	"glpibot/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// Classify turns a raw Telegram message into an InboundMessage.
// Anything without text (photos, stickers, contacts, captions only) is non-text.
func Classify(m *tele.Message) domain.InboundMessage {
	msg := domain.InboundMessage{Kind: domain.ContentNonText}
	if m == nil {
		return msg
	}

	if m.Sender != nil {
		msg.UserID = m.Sender.ID
		msg.Username = m.Sender.Username
	}

	if m.Text == "" {
		return msg
	}

	msg.Kind = domain.ContentText
	msg.Raw = m.Text
	msg.Text = cleanText(m.Text)
	msg.Command, msg.IsCommand = parseCommand(msg.Text)
	return msg
}

// parseCommand extracts "start" from "/start", "/Start@glpi_bot arg"
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// cleanText removes non-printable characters, keeping line breaks
func cleanText(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(text))
}
