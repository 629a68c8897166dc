package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/capitanshop/shopbot/core/logger"
)

// RedisOptions configures the Redis connection used for sessions.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis connects and pings the server before handing the client out.
func OpenRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info(ctx, "state.redis", "redis.connect",
		slog.String("status", "ok"),
		slog.String("host", opts.Addr),
		slog.Int("db", opts.DB),
	)
	return client, nil
}

// RedisStore persists sessions as encoded values under "<prefix><user id>".
type RedisStore[T any] struct {
	client redis.UniversalClient
	codec  Codec[T]
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps client; ttl <= 0 stores sessions without expiry.
func NewRedisStore[T any](client redis.UniversalClient, codec Codec[T], prefix string, ttl time.Duration) *RedisStore[T] {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisStore[T]{client: client, codec: codec, prefix: prefix, ttl: ttl}
}

func (r *RedisStore[T]) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Get loads and decodes the session. Undecodable payloads surface as ErrDecode
// together with whatever partial value the codec produced.
func (r *RedisStore[T]) Get(ctx context.Context, userID int64) (T, bool, error) {
	var zero T
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get session: %w", err)
	}
	v, err := r.codec.Decode(data)
	if err != nil {
		return v, true, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return v, true, nil
}

// Set encodes v and stores it, refreshing the TTL.
func (r *RedisStore[T]) Set(ctx context.Context, userID int64, v T) error {
	data, err := r.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear deletes the session key.
func (r *RedisStore[T]) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}
