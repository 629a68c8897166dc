package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/internal/catalog"
	"github.com/capitanshop/shopbot/internal/chat"
	"github.com/capitanshop/shopbot/internal/listing"
)

// Search lists products whose name contains query.
func (c *Controller) Search(ctx context.Context, ev chat.Event, query string, r chat.Responder) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.Send(ctx, chat.Reply{Text: textSearchUsage})
	}
	c.track(ctx, ev.UserID, "searched")
	found, err := c.catalog.SearchByName(ctx, query)
	if err != nil {
		c.warn(ctx, "product.search", err)
		found = nil
	}
	return r.Send(ctx, c.productButtons(listing.Views(found)))
}

// Available lists products currently offered for sale.
func (c *Controller) Available(ctx context.Context, _ chat.Event, r chat.Responder) error {
	found, err := c.catalog.ListByAvailability(ctx, true)
	if err != nil {
		c.warn(ctx, "product.available", err)
		found = nil
	}
	return r.Send(ctx, c.productButtons(listing.Views(found)))
}

// Stats reports catalog and audience sizes. Failed counts show as zero.
func (c *Controller) Stats(ctx context.Context, _ chat.Event, r chat.Responder) error {
	products, err := c.catalog.Count(ctx)
	if err != nil {
		c.warn(ctx, "product.count", err)
	}
	available, err := c.catalog.ListByAvailability(ctx, true)
	if err != nil {
		c.warn(ctx, "product.available", err)
	}
	users, err := c.users.Count(ctx)
	if err != nil {
		c.warn(ctx, "users.count", err)
	}
	return r.Send(ctx, chat.Reply{Text: fmt.Sprintf("📊 Products: %d (available: %d)\n👤 Users: %d",
		products, len(available), users)})
}

// SetAvailability hides or shows the product whose id is in arg.
func (c *Controller) SetAvailability(ctx context.Context, _ chat.Event, arg string, available bool, r chat.Responder) error {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return r.Send(ctx, chat.Reply{Text: textToggleUsage})
	}
	ok, err := c.catalog.Edit(ctx, id, catalog.Available(available))
	if err != nil {
		c.warn(ctx, "product.edit", err, slog.Int64("product_id", id))
		return r.Send(ctx, chat.Reply{Text: textStateFailed})
	}
	if !ok {
		return r.Send(ctx, chat.Reply{Text: textDeleteMissing})
	}
	state := "hidden"
	if available {
		state = "visible"
	}
	logger.LogEvent(ctx, logger.SVCFlow, slog.LevelInfo, "product.availability",
		slog.String("status", "ok"),
		slog.Int64("product_id", id),
		slog.Bool("available", available),
	)
	return r.Send(ctx, chat.Reply{Text: fmt.Sprintf("✅ Product %d is now %s.", id, state)})
}
