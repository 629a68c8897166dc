package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"github.com/capitanshop/shopbot/core/logger"
	tghelpers "github.com/capitanshop/shopbot/core/telegram/helpers"
)

// RateLimitOptions configures the per-user limiter.
type RateLimitOptions struct {
	PerSecond float64
	Burst     int
	// Exclude lists update kinds ("callback", "message") that bypass the limiter.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops limiters of users not seen for this long.
	IdleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserLimiter hands out one token bucket per Telegram user.
type UserLimiter struct {
	mu       sync.Mutex
	visitors map[int64]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	sweptAt  time.Time
}

// NewUserLimiter creates a limiter allowing perSecond events with burst per user.
func NewUserLimiter(perSecond float64, burst int, idle time.Duration) *UserLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = 3 * time.Minute
	}
	return &UserLimiter{
		visitors: make(map[int64]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

// Allow consumes a token for userID.
func (l *UserLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.sweptAt) > l.idle {
		for id, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idle {
				delete(l.visitors, id)
			}
		}
		l.sweptAt = now
	}
	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[userID] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	default:
		return "other"
	}
}

// RateLimitMiddleware drops updates from users exceeding their token bucket.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.PerSecond <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	limiter := NewUserLimiter(opts.PerSecond, opts.Burst, opts.IdleTTL)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if limiter.Allow(user.ID) {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "rate_limited"),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
