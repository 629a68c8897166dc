// Package app assembles the shop bot: stores, flow controller, media, broadcasts
// and the Telegram routes in front of them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/capitanshop/shopbot/core/bootstrap"
	"github.com/capitanshop/shopbot/core/logger"
	tg "github.com/capitanshop/shopbot/core/telegram"
	"github.com/capitanshop/shopbot/core/telegram/middleware"
	"github.com/capitanshop/shopbot/core/telegram/sender"
	"github.com/capitanshop/shopbot/core/telegram/state"
	"github.com/capitanshop/shopbot/internal/broadcast"
	"github.com/capitanshop/shopbot/internal/catalog"
	"github.com/capitanshop/shopbot/internal/flow"
	"github.com/capitanshop/shopbot/internal/listing"
	"github.com/capitanshop/shopbot/internal/media"
	"github.com/capitanshop/shopbot/internal/users"
	"github.com/capitanshop/shopbot/migrations"
)

// App owns every long-lived component of the bot.
type App struct {
	cfg    *Config
	db     *sqlx.DB
	redis  *redis.Client
	admins middleware.AdminSet

	Catalog     *catalog.Store
	Users       *users.Store
	Listing     *listing.Service
	Gateway     *Gateway
	Dispatcher  *sender.Dispatcher
	Broadcaster *broadcast.Broadcaster
	Controller  *flow.Controller

	// Offline builds the bot without contacting Telegram.
	Offline bool
}

// Bootstrap brings up logging, migrations and the pool, then builds the App.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}
	a, err := New(ctx, cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

// New wires the components over an open pool.
func New(ctx context.Context, cfg *Config, db *sqlx.DB) (*App, error) {
	a := &App{
		cfg:        cfg,
		db:         db,
		admins:     middleware.NewAdminSet(cfg.Telegram.AdminIDs),
		Catalog:    catalog.NewStore(db),
		Users:      users.NewStore(db),
		Gateway:    &Gateway{},
		Dispatcher: sender.NewDispatcher(cfg.Sender.options()),
	}
	a.Listing = listing.NewService(a.Catalog)
	a.Broadcaster = broadcast.New(a.Users, a.Gateway, a.Dispatcher)

	sessions, err := a.sessions(ctx)
	if err != nil {
		_ = a.Dispatcher.Close()
		return nil, err
	}
	store, err := media.New(cfg.Media, a.Gateway)
	if err != nil {
		_ = a.Dispatcher.Close()
		_ = a.Close()
		return nil, err
	}

	a.Controller = flow.New(flow.Deps{
		Catalog:     a.Catalog,
		Users:       a.Users,
		Listing:     a.Listing,
		Media:       store,
		Broadcaster: a.Broadcaster,
		Sessions:    sessions,
		Admins:      a.admins,
		Shop:        cfg.Shop,
	})
	logger.LogEvent(ctx, logger.L, slog.LevelInfo, "app.wired",
		slog.String("status", "ok"),
		slog.String("session", cfg.Session.Backend),
		slog.String("media", cfg.Media.Backend),
		slog.Int("admins", len(a.admins)),
	)
	return a, nil
}

func (a *App) sessions(ctx context.Context) (state.Store[flow.Pending], error) {
	if a.cfg.Session.Backend != SessionRedis {
		return state.NewMemoryStore[flow.Pending](a.cfg.Session.TTL), nil
	}
	client, err := state.OpenRedis(ctx, state.RedisOptions{
		Addr:     a.cfg.Session.Redis.Addr,
		Password: a.cfg.Session.Redis.Password,
		DB:       a.cfg.Session.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("app: session store: %w", err)
	}
	a.redis = client
	return state.NewRedisStore[flow.Pending](client, flow.Codec{}, a.cfg.Session.Prefix, a.cfg.Session.TTL), nil
}

// TelegramRunOptions describes the bot for core/telegram.RunTelegram.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a.Controller == nil {
		return tg.RunOptions{}, fmt.Errorf("app: not initialized")
	}
	reg := a.buildRegistry()
	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Dispatcher:  a.Dispatcher,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Config, onRateLimited),
		Routes:      a.routes(reg),
		Offline:     a.Offline,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.Gateway.Attach(rt.Bot)
			return nil
		},
	}, nil
}

// Close releases the pool and the Redis client. The dispatcher is closed by the bot runtime.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
