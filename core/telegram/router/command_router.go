package router

import (
	tele "gopkg.in/telebot.v4"

	tg "github.com/capitanshop/shopbot/core/telegram"
	"github.com/capitanshop/shopbot/core/telegram/middleware"
)

// CommandRouteOptions configures admin gating for commands.
type CommandRouteOptions struct {
	Admins        middleware.AdminSet
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered command (and alias) with summary logging
// and admin checks.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		name, def := name, def
		h := def.Handler
		if def.AdminOnly {
			h = middleware.AdminOnly(opts.Admins, opts.OnAdminReject)(h)
		}
		wrapped := func(c tele.Context) error {
			return run(c, handlerName("command", name), func() error { return h(c) })
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: wrapped})
		for _, alias := range def.Aliases {
			if alias != "" && alias[0] != '/' {
				alias = "/" + alias
			}
			routes = append(routes, tg.Route{Endpoint: alias, Handler: wrapped})
		}
	}
	return routes
}
