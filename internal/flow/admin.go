package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/core/telegram/state"
	"github.com/capitanshop/shopbot/internal/catalog"
	"github.com/capitanshop/shopbot/internal/chat"
)

// Title and description caps keep a product caption under Telegram's 1024 character limit.
const (
	minTitleLen       = 2
	maxTitleLen       = 64
	minDescriptionLen = 5
	maxDescriptionLen = 800
)

var validate = validator.New()

// localDigits maps Persian and Arabic-Indic digits to ASCII.
var localDigits = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4", "۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4", "٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// Input feeds one message into the pending flow of its sender.
func (c *Controller) Input(ctx context.Context, ev chat.Event, r chat.Responder) error {
	p, ok, err := c.sessions.Get(ctx, ev.UserID)
	switch {
	case errors.Is(err, state.ErrDecode):
		c.warn(ctx, "session.decode", err)
		p, ok = Unrecognized{}, true
	case err != nil:
		c.warn(ctx, "session.get", err)
		return r.Send(ctx, chat.Reply{Text: textStateFailed})
	}
	if !ok {
		return errNoSession
	}

	switch p := p.(type) {
	case AwaitingImage:
		return c.onImage(ctx, ev, r)
	case AwaitingTitle:
		return c.onTitle(ctx, ev, p, r)
	case AwaitingDescription:
		return c.onDescription(ctx, ev, p, r)
	case AwaitingPrice:
		return c.onPrice(ctx, ev, p, r)
	case AwaitingDeleteID:
		return c.onDeleteID(ctx, ev, r)
	default:
		logger.LogEvent(ctx, logger.SVCFlow, slog.LevelWarn, "flow.unrecognized",
			slog.String("status", "skip"),
			slog.String("stage", string(p.Stage())),
		)
		c.finish(ctx, ev.UserID)
		return r.Send(ctx, chat.Reply{Text: textStartOver})
	}
}

func (c *Controller) onImage(ctx context.Context, ev chat.Event, r chat.Responder) error {
	if !ev.HasPhoto() {
		return r.Send(ctx, chat.Reply{Text: textNeedImage})
	}
	ref, err := c.media.Save(ctx, *ev.Photo)
	if err != nil {
		c.warn(ctx, "media.save", err)
		return r.Send(ctx, chat.Reply{Text: textImageFailed})
	}
	return c.advance(ctx, ev.UserID, AwaitingTitle{Image: ref}, textAskTitle, r)
}

func (c *Controller) onTitle(ctx context.Context, ev chat.Event, p AwaitingTitle, r chat.Responder) error {
	title := strings.TrimSpace(ev.Text)
	if validate.Var(title, fmt.Sprintf("min=%d", minTitleLen)) != nil {
		return r.Send(ctx, chat.Reply{Text: textTitleShort})
	}
	if validate.Var(title, fmt.Sprintf("max=%d", maxTitleLen)) != nil {
		return r.Send(ctx, chat.Reply{Text: textTitleLong})
	}
	return c.advance(ctx, ev.UserID, AwaitingDescription{Image: p.Image, Name: title}, textAskDesc, r)
}

func (c *Controller) onDescription(ctx context.Context, ev chat.Event, p AwaitingDescription, r chat.Responder) error {
	desc := strings.TrimSpace(ev.Text)
	if validate.Var(desc, fmt.Sprintf("min=%d", minDescriptionLen)) != nil {
		return r.Send(ctx, chat.Reply{Text: textDescShort})
	}
	if validate.Var(desc, fmt.Sprintf("max=%d", maxDescriptionLen)) != nil {
		return r.Send(ctx, chat.Reply{Text: textDescLong})
	}
	next := AwaitingPrice{Image: p.Image, Name: p.Name, Description: desc}
	return c.advance(ctx, ev.UserID, next, textAskPrice, r)
}

// parsePrice accepts unsigned digit literals that fit int64. Persian and
// Arabic-Indic digits count as digits.
func parsePrice(s string) (int64, bool) {
	s = localDigits.Replace(strings.TrimSpace(s))
	if validate.Var(s, "required,number") != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// onPrice commits the product, confirms it and announces it to every user.
// A failed insert keeps the state so the admin can resend the price.
func (c *Controller) onPrice(ctx context.Context, ev chat.Event, p AwaitingPrice, r chat.Responder) error {
	price, ok := parsePrice(ev.Text)
	if !ok {
		return r.Send(ctx, chat.Reply{Text: textDigitsOnly})
	}
	id, err := c.catalog.Add(ctx, catalog.NewProduct{
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		ImageURL:    p.Image,
		IsAvailable: true,
	})
	if err != nil {
		c.warn(ctx, "product.add", err)
		return r.Send(ctx, chat.Reply{Text: textAddFailed})
	}
	c.finish(ctx, ev.UserID)
	logger.LogEvent(ctx, logger.SVCFlow, slog.LevelInfo, "product.added",
		slog.String("status", "ok"),
		slog.Int64("product_id", id),
	)

	if err := r.Send(ctx, chat.Reply{Text: fmt.Sprintf("✅ Product %d saved.", id)}); err != nil {
		c.warn(ctx, "product.confirm", err)
	}
	if c.broadcaster == nil {
		return nil
	}
	if _, err := c.broadcaster.Broadcast(ctx, "announce_product", c.announcement(p, price)); err != nil {
		return r.Send(ctx, chat.Reply{Text: textAnnounceFail})
	}
	return nil
}

// onDeleteID keeps asking until a known id is deleted or the admin cancels.
func (c *Controller) onDeleteID(ctx context.Context, ev chat.Event, r chat.Responder) error {
	id, err := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if err != nil {
		return r.Send(ctx, chat.Reply{Text: textDeleteMissing})
	}
	deleted, err := c.catalog.Delete(ctx, id)
	if err != nil {
		c.warn(ctx, "product.delete", err, slog.Int64("product_id", id))
		return r.Send(ctx, chat.Reply{Text: textDeleteFailed})
	}
	if !deleted {
		return r.Send(ctx, chat.Reply{Text: textDeleteMissing})
	}
	c.finish(ctx, ev.UserID)
	logger.LogEvent(ctx, logger.SVCFlow, slog.LevelInfo, "product.deleted",
		slog.String("status", "ok"),
		slog.Int64("product_id", id),
	)
	return r.Send(ctx, chat.Reply{Text: fmt.Sprintf("✅ Product with ID %d deleted.", id)})
}
