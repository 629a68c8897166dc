package router

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	tg "github.com/capitanshop/shopbot/core/telegram"
	"github.com/capitanshop/shopbot/core/telegram/middleware"
)

const answeredKey = "cb_answered"

// ackContext records whether the handler answered the callback query itself.
type ackContext struct{ tele.Context }

func (a ackContext) Respond(resp ...*tele.CallbackResponse) error {
	a.Set(answeredKey, true)
	return a.Context.Respond(resp...)
}

// CallbackRoute routes inline-button presses through the registry. Every
// callback query is answered exactly once: by the handler or afterwards here.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		c = ackContext{Context: c}
		data := middleware.CallbackData(cb)

		key, h, ok := reg.ResolveCallback(data)
		if !ok {
			key = "not_found"
			h = reg.CallbackNotFound()
		}
		err := run(c, handlerName("callback", key), func() error {
			if h == nil {
				return nil
			}
			return h(c)
		}, slog.String("cb_key", data))

		if answered, _ := c.Get(answeredKey).(bool); !answered {
			_ = c.Respond()
		}
		return err
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
