package middleware

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func newTestBot(t *testing.T) *tele.Bot {
	bot, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("create bot: %v", err)
	}
	return bot
}

func TestTrace_AssignsTraceID(t *testing.T) {
	bot := newTestBot(t)
	c := bot.NewContext(tele.Update{
		ID:      1,
		Message: &tele.Message{Sender: &tele.User{ID: 42}, Text: "hi"},
	})

	var seen string
	handler := Trace(zap.NewNop())(func(c tele.Context) error {
		seen = TraceID(c)
		return nil
	})

	err := handler(c)

	assert.NoError(t, err)
	_, parseErr := uuid.Parse(seen)
	assert.NoError(t, parseErr)
}

func TestTrace_DropsUpdatesWithoutSender(t *testing.T) {
	bot := newTestBot(t)
	c := bot.NewContext(tele.Update{ID: 2})

	called := false
	handler := Trace(zap.NewNop())(func(c tele.Context) error {
		called = true
		return nil
	})

	assert.NoError(t, handler(c))
	assert.False(t, called)
}

func TestTraceID_Missing(t *testing.T) {
	bot := newTestBot(t)
	c := bot.NewContext(tele.Update{ID: 3})

	assert.Empty(t, TraceID(c))
}
