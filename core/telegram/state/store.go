package state

import (
	"context"
	"errors"
)

// ErrDecode reports a persisted session that could not be turned back into a value.
var ErrDecode = errors.New("state: decode session")

// Store keeps at most one session value per user. A missing entry means the user is idle.
type Store[T any] interface {
	Get(ctx context.Context, userID int64) (T, bool, error)
	Set(ctx context.Context, userID int64, v T) error
	Clear(ctx context.Context, userID int64) error
}

// Codec converts session values to and from their persisted form.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// InProgress reports whether the user currently has a session. Lookup errors
// count as idle; an undecodable session still counts so its owner can reset it.
func InProgress[T any](ctx context.Context, s Store[T], userID int64) bool {
	_, ok, err := s.Get(ctx, userID)
	return ok && (err == nil || errors.Is(err, ErrDecode))
}
