package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/capitanshop/shopbot/core/logger"
	tghelpers "github.com/capitanshop/shopbot/core/telegram/helpers"
	"github.com/capitanshop/shopbot/core/telegram/middleware"
)

// run executes fn under handlerName and writes the handler.handled summary.
func run(c tele.Context, handlerName string, fn func() error, extras ...slog.Attr) error {
	start := time.Now()
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	summarize(c, handlerName, start, "", err, extras...)
	return err
}

func summarize(c tele.Context, handlerName string, start time.Time, status string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := middleware.GetCounters(c)
	if status == "" {
		status = logger.Status(err)
	}
	level := slog.LevelInfo
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", logger.Status(err)),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		level = slog.LevelError
		attrs = append(attrs, logger.Err(err), slog.String("err_code", errorCode(err)))
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", append(attrs, extras...)...)
}

func handlerName(kind, key string) string {
	key = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(key, "/")))
	if key == "" {
		key = "unknown"
	}
	return kind + "." + strings.ReplaceAll(key, " ", "_")
}

func errorCode(err error) string {
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}
