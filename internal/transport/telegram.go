package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"glpibot/internal/poller"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// extra time on top of the long-poll timeout before the HTTP client gives up
const requestSlack = 30 * time.Second

// BotConfig holds bot construction settings
type BotConfig struct {
	Token       string
	PollTimeout time.Duration
	// URL overrides the Bot API server
	URL string
	// Offline skips the getMe call, for tests
	Offline bool
}

// NewBot creates a telebot instance that never polls on its own: updates are
// fed through ProcessUpdate by the polling supervisor. Handlers run inside
// ProcessUpdate, so the caller decides ordering and concurrency.
func NewBot(cfg BotConfig, logger *zap.Logger) (*tele.Bot, error) {
	bot, err := tele.NewBot(tele.Settings{
		URL:         cfg.URL,
		Token:       cfg.Token,
		Offline:     cfg.Offline,
		Synchronous: true,
		Client:  &http.Client{Timeout: cfg.PollTimeout + requestSlack},
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil {
				fields = append(fields, zap.Int("update_id", c.Update().ID))
				if sender := c.Sender(); sender != nil {
					fields = append(fields, zap.Int64("user_id", sender.ID))
				}
			}
			logger.Error("Handler error", fields...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return bot, nil
}

// Poller fetches updates with one getUpdates long-poll request per call
type Poller struct {
	bot *tele.Bot
}

// NewPoller creates an update fetcher
func NewPoller(bot *tele.Bot) *Poller {
	return &Poller{bot: bot}
}

// Fetch implements poller.Fetcher
func (p *Poller) Fetch(ctx context.Context, offset int, timeout time.Duration) ([]tele.Update, error) {
	params := map[string]string{
		"offset":  strconv.Itoa(offset),
		"timeout": strconv.Itoa(int(timeout / time.Second)),
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	// telebot requests carry no context, so cancellation only abandons the wait
	go func() {
		data, err := p.bot.Raw("getUpdates", params)
		done <- result{data: data, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		return nil, classify(res.err)
	}

	var resp struct {
		Result []tele.Update `json:"result"`
	}
	if err := json.Unmarshal(res.data, &resp); err != nil {
		return nil, classify(fmt.Errorf("decode updates: %w", err))
	}
	return resp.Result, nil
}

// classify marks gateway failures that come back as non-JSON pages
func classify(err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &poller.NetworkError{Err: err}
	}
	return err
}

// Sender delivers messages to private chats
type Sender struct {
	bot *tele.Bot
}

// NewSender creates a message sender
func NewSender(bot *tele.Bot) *Sender {
	return &Sender{bot: bot}
}

// Send sends text to the user's private chat. Options are telebot send options.
func (s *Sender) Send(userID int64, text string, opts ...interface{}) error {
	_, err := s.bot.Send(tele.ChatID(userID), text, opts...)
	return err
}
