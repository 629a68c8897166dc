package router

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/capitanshop/shopbot/core/telegram"
	tghelpers "github.com/capitanshop/shopbot/core/telegram/helpers"
)

// Flow is a per-user multi-step conversation that claims free-form input while active.
type Flow interface {
	InProgress(ctx context.Context, userID int64) bool
	Handle(c tele.Context) error
}

// InputOptions controls fallback behaviour for input nobody claimed.
type InputOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

// InputRoutes routes text, photos and documents. An active flow wins; text
// then falls back to the registry text fallback.
func InputRoutes(flow Flow, reg *tg.Registry, opts InputOptions) []tg.Route {
	inFlow := func(c tele.Context) bool {
		u := c.Sender()
		return flow != nil && u != nil && flow.InProgress(tghelpers.BuildContext(c), u.ID)
	}

	text := func(c tele.Context) error {
		if inFlow(c) {
			return run(c, "flow.text", func() error { return flow.Handle(c) })
		}
		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return run(c, "text.fallback", func() error { return fb(c) })
			}
		}
		if opts.UnknownText != nil {
			return run(c, "text.unknown", func() error { return opts.UnknownText(c) })
		}
		return nil
	}

	media := func(kind string) tele.HandlerFunc {
		return func(c tele.Context) error {
			if inFlow(c) {
				return run(c, "flow."+kind, func() error { return flow.Handle(c) })
			}
			if opts.UnknownMedia != nil {
				return run(c, kind+".unexpected", func() error { return opts.UnknownMedia(c) })
			}
			return nil
		}
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnPhoto, Handler: media("photo")},
		{Endpoint: tele.OnDocument, Handler: media("document")},
	}
}
