// Package helpers bridges telebot contexts and the logger's context.Context metadata.
package helpers

import (
	"context"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/capitanshop/shopbot/core/logger"
)

const ctxKey = "shopbot.ctx"

var baseCtx atomic.Value

// SetBaseContext sets the parent of every per-update context, normally the
// process root context so shutdown cancels in-flight handlers.
func SetBaseContext(ctx context.Context) {
	if ctx != nil {
		baseCtx.Store(&ctx)
	}
}

func base() context.Context {
	if p, ok := baseCtx.Load().(*context.Context); ok && p != nil {
		return *p
	}
	return context.Background()
}

// Meta extracts update, sender and chat ids; missing parts are zero.
func Meta(c tele.Context) (updateID int, userID, chatID int64) {
	if c == nil {
		return 0, 0, 0
	}
	updateID = c.Update().ID
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	return updateID, userID, chatID
}

// BuildContext returns the context cached on c, creating it on first use with
// rid and update metadata attached.
func BuildContext(c tele.Context) context.Context {
	if c == nil {
		return base()
	}
	if ctx, ok := c.Get(ctxKey).(context.Context); ok && ctx != nil {
		return ctx
	}
	updateID, userID, chatID := Meta(c)
	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}
	ctx := logger.WithRID(base(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler records the handler name on the cached context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || c == nil {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	c.Set(ctxKey, ctx)
	return ctx
}
