package middleware

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/capitanshop/shopbot/core/logger"
	tghelpers "github.com/capitanshop/shopbot/core/telegram/helpers"
)

// LoggerMiddleware assigns the update rid, caches the logging context and
// writes one debug receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		updateID, userID, chatID := tghelpers.Meta(c)
		c.Set("rid", logger.BuildRID(updateID, chatID, userID))
		c.Set("update_start", time.Now())
		ctx := tghelpers.BuildContext(c)

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if u := c.Sender(); u != nil && u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		upd := c.Update()
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(CallbackData(upd.Callback), 128)))
		case upd.Message != nil && upd.Message.Photo != nil:
			attrs = append(attrs, slog.String("payload", "<photo>"))
		case upd.Message != nil:
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
		}
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}

// CallbackData returns the raw callback payload with telebot's unique marker removed.
func CallbackData(cb *tele.Callback) string {
	if cb == nil {
		return ""
	}
	data := cb.Data
	if len(data) > 0 && data[0] == '\f' {
		data = data[1:]
	}
	return data
}
