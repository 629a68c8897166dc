package telegram

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/capitanshop/shopbot/core/config"
	"github.com/capitanshop/shopbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared chain: recover, rate limit (when
// configured), update logging and message counters.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.PerSecond > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[strings.ToLower(kind)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				PerSecond: cfg.RateLimit.PerSecond,
				Burst:     cfg.RateLimit.Burst,
				Exclude:   exclude,
				OnLimited: onLimited,
			}),
		})
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
