package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"glpibot/internal/poller"
	"glpibot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPoller(t *testing.T, handler http.HandlerFunc) *Poller {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	bot, err := NewBot(BotConfig{
		Token:       "TOKEN",
		PollTimeout: time.Second,
		URL:         server.URL,
		Offline:     true,
	}, testutil.NewTestLogger())
	require.NoError(t, err)

	return NewPoller(bot)
}

func TestPoller_Fetch(t *testing.T) {
	var payload map[string]string
	p := newTestPoller(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":5,"message":{"message_id":1,"from":{"id":42},"chat":{"id":42,"type":"private"},"text":"/start"}},
			{"update_id":6,"message":{"message_id":2,"from":{"id":42},"chat":{"id":42,"type":"private"},"text":"hi"}}
		]}`))
	})

	updates, err := p.Fetch(context.Background(), 5, time.Second)

	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, 5, updates[0].ID)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, int64(42), updates[1].Message.Sender.ID)
	assert.Equal(t, "5", payload["offset"])
	assert.Equal(t, "1", payload["timeout"])
}

func TestPoller_Fetch_NoWait(t *testing.T) {
	var payload map[string]string
	p := newTestPoller(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	updates, err := p.Fetch(context.Background(), -1, 0)

	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.Equal(t, "-1", payload["offset"])
	assert.Equal(t, "0", payload["timeout"])
}

func TestPoller_Fetch_GatewayPage(t *testing.T) {
	p := newTestPoller(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>502 Bad Gateway</html>"))
	})

	_, err := p.Fetch(context.Background(), 0, time.Second)

	require.Error(t, err)
	assert.True(t, poller.IsNetworkError(err))
}

func TestPoller_Fetch_Unauthorized(t *testing.T) {
	p := newTestPoller(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	})

	_, err := p.Fetch(context.Background(), 0, time.Second)

	require.Error(t, err)
	assert.False(t, poller.IsNetworkError(err))
}

func TestPoller_Fetch_Cancelled(t *testing.T) {
	release := make(chan struct{})
	p := newTestPoller(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Fetch(ctx, 0, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSender_Send(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"chat":{"id":42,"type":"private"},"text":"hello"}}`))
	}))
	defer server.Close()

	bot, err := NewBot(BotConfig{Token: "TOKEN", URL: server.URL, Offline: true}, testutil.NewTestLogger())
	require.NoError(t, err)

	err = NewSender(bot).Send(42, "hello")

	require.NoError(t, err)
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "hello", payload["text"])
}
