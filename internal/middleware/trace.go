package middleware

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const traceKey = "trace_id"

// Trace tags every update with a trace id and drops updates without a sender
func Trace(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				logger.Debug("Dropping update without sender", zap.Int("update_id", c.Update().ID))
				return nil
			}

			traceID := uuid.NewString()
			c.Set(traceKey, traceID)

			logger.Debug("Update received",
				zap.String("trace_id", traceID),
				zap.Int("update_id", c.Update().ID),
				zap.Int64("user_id", sender.ID),
			)

			return next(c)
		}
	}
}

// TraceID returns the id assigned by Trace, or an empty string
func TraceID(c tele.Context) string {
	id, _ := c.Get(traceKey).(string)
	return id
}
