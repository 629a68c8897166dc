// Package flow is the conversation controller: the idle menu dispatch table and the
// multi-step admin flows that add and delete products.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/core/telegram/callbacks"
	"github.com/capitanshop/shopbot/core/telegram/state"
	"github.com/capitanshop/shopbot/internal/broadcast"
	"github.com/capitanshop/shopbot/internal/catalog"
	"github.com/capitanshop/shopbot/internal/chat"
	"github.com/capitanshop/shopbot/internal/listing"
	"github.com/capitanshop/shopbot/internal/media"
)

// Callback data tags. They are sent verbatim by inline buttons.
const (
	ActionStore           = "store"
	ActionTelegramSupport = "telegram_support"
	ActionWhatsAppSupport = "whatsapp_support"
	ActionProductList     = "product_list"
	ActionManageProducts  = "manage_products"
	ActionManageUsers     = "manage_users"
	ActionAddProduct      = "add_product"
	ActionDeleteProduct   = "delete_product"
	ActionBackToMain      = "back_to_main"
	BuyPrefix             = "buy_"
)

type Catalog interface {
	Add(ctx context.Context, p catalog.NewProduct) (int64, error)
	Edit(ctx context.Context, id int64, patch catalog.Patch) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
	ListByAvailability(ctx context.Context, available bool) ([]catalog.Product, error)
	SearchByName(ctx context.Context, substring string) ([]catalog.Product, error)
	Count(ctx context.Context) (int, error)
}

type Users interface {
	Save(ctx context.Context, id int64) error
	All(ctx context.Context) ([]int64, error)
	SaveAction(ctx context.Context, id int64, label string) error
	Count(ctx context.Context) (int, error)
}

type Listing interface {
	ProductList(ctx context.Context) []listing.ProductView
}

type Broadcaster interface {
	Broadcast(ctx context.Context, action string, reply chat.Reply) (*broadcast.Delivery, error)
}

// Admins is the exact-membership allow-list for management actions.
type Admins interface {
	Contains(id int64) bool
}

// Deps wires the controller to its collaborators.
type Deps struct {
	Catalog     Catalog
	Users       Users
	Listing     Listing
	Media       media.Store
	Broadcaster Broadcaster
	Sessions    state.Store[Pending]
	Admins      Admins
	Shop        Shop
}

type action struct {
	admin bool
	run   func(c *Controller, ctx context.Context, ev chat.Event, r chat.Responder) error
}

var dispatch = map[string]action{
	ActionStore:           {run: (*Controller).store},
	ActionTelegramSupport: {run: (*Controller).telegramSupport},
	ActionWhatsAppSupport: {run: (*Controller).whatsAppSupport},
	ActionProductList:     {run: (*Controller).productList},
	ActionManageProducts:  {admin: true, run: (*Controller).manageProducts},
	ActionManageUsers:     {admin: true, run: (*Controller).manageUsers},
	ActionAddProduct:      {admin: true, run: (*Controller).addProduct},
	ActionDeleteProduct:   {admin: true, run: (*Controller).deleteProduct},
	ActionBackToMain:      {run: (*Controller).backToMain},
}

// Controller maps chat events to replies. It keeps no per-user state of its own.
type Controller struct {
	catalog     Catalog
	users       Users
	listing     Listing
	media       media.Store
	broadcaster Broadcaster
	sessions    state.Store[Pending]
	admins      Admins
	shop        Shop
}

func New(d Deps) *Controller {
	if d.Media == nil {
		d.Media = media.TelegramStore{}
	}
	return &Controller{
		catalog:     d.Catalog,
		users:       d.Users,
		listing:     d.Listing,
		media:       d.Media,
		broadcaster: d.Broadcaster,
		sessions:    d.Sessions,
		admins:      d.Admins,
		shop:        d.Shop,
	}
}

// CallbackKeys lists the exact callback tags handled by Callback.
func CallbackKeys() []string {
	keys := make([]string, 0, len(dispatch))
	for k := range dispatch {
		keys = append(keys, k)
	}
	return keys
}

func (c *Controller) isAdmin(id int64) bool {
	return c.admins != nil && c.admins.Contains(id)
}

// Start registers the user and shows the main menu.
func (c *Controller) Start(ctx context.Context, ev chat.Event, r chat.Responder) error {
	if err := c.users.Save(ctx, ev.UserID); err != nil {
		c.warn(ctx, "user.save", err)
	}
	return r.Send(ctx, c.mainMenu(c.isAdmin(ev.UserID)))
}

// Callback runs the menu action bound to data. Admin-only actions from other
// users and unknown tags are ignored without a reply.
func (c *Controller) Callback(ctx context.Context, ev chat.Event, data string, r chat.Responder) error {
	if strings.HasPrefix(data, BuyPrefix) {
		return c.buy(ctx, ev, data, r)
	}
	a, ok := dispatch[data]
	if !ok {
		return nil
	}
	if a.admin && !c.isAdmin(ev.UserID) {
		logger.LogEvent(ctx, logger.SVCFlow, slog.LevelDebug, "action.denied",
			slog.String("status", "skip"),
			slog.String("action", data),
		)
		return nil
	}
	return a.run(c, ctx, ev, r)
}

func (c *Controller) store(ctx context.Context, ev chat.Event, r chat.Responder) error {
	c.track(ctx, ev.UserID, "clicked_store")
	return r.Send(ctx, chat.Reply{Text: "🔗 Store link: " + c.shop.StoreURL})
}

func (c *Controller) telegramSupport(ctx context.Context, ev chat.Event, r chat.Responder) error {
	c.track(ctx, ev.UserID, "clicked_telegram_support")
	if err := r.Notify(ctx, textTelegramWait); err != nil {
		c.warn(ctx, "notify", err)
	}
	return r.Send(ctx, chat.Reply{Text: "🔗 Telegram support: " + c.shop.TelegramSupportURL})
}

func (c *Controller) whatsAppSupport(ctx context.Context, ev chat.Event, r chat.Responder) error {
	c.track(ctx, ev.UserID, "clicked_whatsapp_support")
	if err := r.Send(ctx, chat.Reply{Text: textWhatsAppWait}); err != nil {
		return err
	}
	return r.Send(ctx, chat.Reply{Text: "To contact WhatsApp support, please use this link: " + c.shop.WhatsAppSupportURL})
}

func (c *Controller) productList(ctx context.Context, ev chat.Event, r chat.Responder) error {
	c.track(ctx, ev.UserID, "clicked_product_list")
	views := c.listing.ProductList(ctx)
	visible := views[:0:0]
	for _, v := range views {
		if v.Available {
			visible = append(visible, v)
		}
	}
	return r.Send(ctx, c.productButtons(visible))
}

// buy shows one product card. Unknown ids get a not-found text and no side effects.
func (c *Controller) buy(ctx context.Context, ev chat.Event, data string, r chat.Responder) error {
	id, err := callbacks.SuffixInt64(data, BuyPrefix)
	if err != nil {
		return r.Send(ctx, chat.Reply{Text: textNotFound})
	}
	p, err := c.catalog.GetByID(ctx, id)
	if err != nil {
		c.warn(ctx, "product.get", err, slog.Int64("product_id", id))
	}
	if p == nil {
		return r.Send(ctx, chat.Reply{Text: textNotFound})
	}
	c.track(ctx, ev.UserID, fmt.Sprintf("requested_buy_%d", p.ID))

	view := listing.Views([]catalog.Product{*p})[0]
	if err := r.Send(ctx, c.productCard(view)); err != nil {
		logger.LogEvent(ctx, logger.SVCFlow, slog.LevelError, "product.card",
			slog.String("status", "fail"),
			slog.Int64("product_id", p.ID),
			logger.Err(err),
		)
		return r.Send(ctx, chat.Reply{Text: textSendFailed})
	}
	return nil
}

func (c *Controller) manageProducts(ctx context.Context, _ chat.Event, r chat.Responder) error {
	menu := chat.Reply{Text: textManage, Buttons: chat.Column(
		chat.Button{Text: btnAdd, Data: ActionAddProduct},
		chat.Button{Text: btnDelete, Data: ActionDeleteProduct},
		chat.Button{Text: btnBack, Data: ActionBackToMain},
	)}
	if err := r.Send(ctx, menu); err != nil {
		return err
	}
	return r.Send(ctx, chat.Reply{Text: c.inventory(c.listing.ProductList(ctx))})
}

func (c *Controller) manageUsers(ctx context.Context, _ chat.Event, r chat.Responder) error {
	ids, err := c.users.All(ctx)
	if err != nil {
		c.warn(ctx, "users.list", err)
		ids = nil
	}
	return r.Send(ctx, chat.Reply{
		Text:    userList(ids),
		Buttons: chat.Column(chat.Button{Text: btnBack, Data: ActionBackToMain}),
	})
}

func (c *Controller) addProduct(ctx context.Context, ev chat.Event, r chat.Responder) error {
	return c.advance(ctx, ev.UserID, AwaitingImage{}, textAskImage, r)
}

func (c *Controller) deleteProduct(ctx context.Context, ev chat.Event, r chat.Responder) error {
	return c.advance(ctx, ev.UserID, AwaitingDeleteID{}, textAskDeleteID, r)
}

func (c *Controller) backToMain(ctx context.Context, ev chat.Event, r chat.Responder) error {
	return r.Send(ctx, c.mainMenu(c.isAdmin(ev.UserID)))
}

// InProgress reports whether userID is inside a flow and owns its next input.
func (c *Controller) InProgress(ctx context.Context, userID int64) bool {
	return state.InProgress(ctx, c.sessions, userID)
}

// Cancel drops any pending flow.
func (c *Controller) Cancel(ctx context.Context, ev chat.Event, r chat.Responder) error {
	if !c.InProgress(ctx, ev.UserID) {
		return r.Send(ctx, chat.Reply{Text: textNothingCancel})
	}
	if err := c.sessions.Clear(ctx, ev.UserID); err != nil {
		c.warn(ctx, "session.clear", err)
		return r.Send(ctx, chat.Reply{Text: textStateFailed})
	}
	return r.Send(ctx, chat.Reply{Text: textCancelled})
}

// advance stores next for userID and sends the prompt for that step.
func (c *Controller) advance(ctx context.Context, userID int64, next Pending, prompt string, r chat.Responder) error {
	if err := c.sessions.Set(ctx, userID, next); err != nil {
		c.warn(ctx, "session.set", err, slog.String("stage", string(next.Stage())))
		return r.Send(ctx, chat.Reply{Text: textStateFailed})
	}
	logger.LogEvent(ctx, logger.SVCFlow, slog.LevelDebug, "flow.stage",
		slog.String("status", "ok"),
		slog.String("stage", string(next.Stage())),
	)
	return r.Send(ctx, chat.Reply{Text: prompt})
}

func (c *Controller) finish(ctx context.Context, userID int64) {
	if err := c.sessions.Clear(ctx, userID); err != nil {
		c.warn(ctx, "session.clear", err)
	}
}

// track appends an action to the user log; failures are only logged.
func (c *Controller) track(ctx context.Context, userID int64, label string) {
	if err := c.users.SaveAction(ctx, userID, label); err != nil {
		c.warn(ctx, "user.action", err, slog.String("action", label))
	}
}

func (c *Controller) warn(ctx context.Context, event string, err error, attrs ...slog.Attr) {
	logger.LogEvent(ctx, logger.SVCFlow, slog.LevelWarn, event,
		append([]slog.Attr{slog.String("status", "fail"), logger.Err(err)}, attrs...)...)
}

var errNoSession = errors.New("flow: no pending session")
