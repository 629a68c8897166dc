package app

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/capitanshop/shopbot/core/telegram"
	"github.com/capitanshop/shopbot/core/telegram/commands"
	tghelpers "github.com/capitanshop/shopbot/core/telegram/helpers"
	"github.com/capitanshop/shopbot/core/telegram/middleware"
	"github.com/capitanshop/shopbot/core/telegram/router"
	"github.com/capitanshop/shopbot/internal/flow"
)

const textSlowDown = "Too many requests, please slow down."

// flowInput lets the input router hand free-form messages to the controller.
type flowInput struct {
	ctrl *flow.Controller
}

func (f flowInput) InProgress(ctx context.Context, userID int64) bool {
	return f.ctrl.InProgress(ctx, userID)
}

func (f flowInput) Handle(c tele.Context) error {
	return f.ctrl.Input(tghelpers.BuildContext(c), eventFrom(c), responder{c})
}

// handle adapts a controller entry point to a telebot handler.
func (a *App) handle(fn func(ctx context.Context, c tele.Context, r responder) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		return fn(tghelpers.BuildContext(c), c, responder{c})
	}
}

func (a *App) buildRegistry() *tg.Registry {
	reg := tg.NewRegistry()
	ctrl := a.Controller

	reg.RegisterCommand("/start", commands.Command{
		Description: "Open the main menu",
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.Start(ctx, eventFrom(c), r)
		}),
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Description: "Cancel the current step",
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.Cancel(ctx, eventFrom(c), r)
		}),
	})
	reg.RegisterCommand("/search", commands.Command{
		Description: "Search products by name",
		Aliases:     []string{"find"},
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.Search(ctx, eventFrom(c), commands.Args(c), r)
		}),
	})
	reg.RegisterCommand("/available", commands.Command{
		Description: "Show products for sale",
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.Available(ctx, eventFrom(c), r)
		}),
	})
	reg.RegisterCommand("/stats", commands.Command{
		Description: "Catalog and user counts",
		AdminOnly:   true,
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.Stats(ctx, eventFrom(c), r)
		}),
	})
	reg.RegisterCommand("/hide", commands.Command{
		Description: "Hide a product from customers",
		AdminOnly:   true,
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.SetAvailability(ctx, eventFrom(c), commands.Args(c), false, r)
		}),
	})
	reg.RegisterCommand("/show", commands.Command{
		Description: "Offer a hidden product again",
		AdminOnly:   true,
		Handler: a.handle(func(ctx context.Context, c tele.Context, r responder) error {
			return ctrl.SetAvailability(ctx, eventFrom(c), commands.Args(c), true, r)
		}),
	})

	onCallback := a.handle(func(ctx context.Context, c tele.Context, r responder) error {
		return ctrl.Callback(ctx, eventFrom(c), middleware.CallbackData(c.Callback()), r)
	})
	for _, key := range flow.CallbackKeys() {
		_ = reg.RegisterCallback(key, onCallback)
	}
	_ = reg.RegisterCallbackPrefix(flow.BuyPrefix, onCallback)
	return reg
}

func onRateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: textSlowDown})
	}
	return c.Send(textSlowDown)
}

// routes lists every handler: commands, callbacks, then free-form input.
func (a *App) routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{Admins: a.admins})
	routes = append(routes, router.CallbackRoute(reg))
	return append(routes, router.InputRoutes(flowInput{ctrl: a.Controller}, reg, router.InputOptions{})...)
}
