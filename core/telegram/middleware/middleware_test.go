package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b
}

func messageFrom(b *tele.Bot, userID int64) tele.Context {
	return b.NewContext(tele.Update{
		ID: 10,
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   "hi",
		},
	})
}

func TestAdminOnly(t *testing.T) {
	b := offlineBot(t)
	admins := NewAdminSet([]int64{7, 0, -3})
	assert.Len(t, admins, 1)

	var called, rejected int
	h := AdminOnly(admins, func(tele.Context) error { rejected++; return nil })(func(tele.Context) error {
		called++
		return nil
	})
	require.NoError(t, h(messageFrom(b, 7)))
	require.NoError(t, h(messageFrom(b, 8)))
	assert.Equal(t, 1, called)
	assert.Equal(t, 1, rejected)

	silent := AdminOnly(admins, nil)(func(tele.Context) error { called++; return nil })
	require.NoError(t, silent(messageFrom(b, 8)))
	assert.Equal(t, 1, called)
}

func TestUserLimiterPerUserBuckets(t *testing.T) {
	l := NewUserLimiter(1, 2, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))
	assert.True(t, l.Allow(2))

	now = now.Add(time.Second)
	assert.True(t, l.Allow(1))

	now = now.Add(5 * time.Minute)
	l.Allow(3)
	l.mu.Lock()
	_, kept := l.visitors[1]
	l.mu.Unlock()
	assert.False(t, kept)
}

func TestRateLimitMiddlewareExclusions(t *testing.T) {
	b := offlineBot(t)
	var limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		PerSecond: 0.001,
		Burst:     1,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	var passed int
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(messageFrom(b, 5)))
	require.NoError(t, h(messageFrom(b, 5)))
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, limited)

	cb := b.NewContext(tele.Update{ID: 11, Callback: &tele.Callback{Sender: &tele.User{ID: 5}, Data: "store"}})
	require.NoError(t, h(cb))
	assert.Equal(t, 2, passed)
}

func TestRecoverMiddleware(t *testing.T) {
	b := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(messageFrom(b, 1))
	assert.Error(t, err)

	sentinel := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return sentinel })
	assert.ErrorIs(t, h(messageFrom(b, 1)), sentinel)
}

func TestCallbackData(t *testing.T) {
	assert.Equal(t, "buy_3", CallbackData(&tele.Callback{Data: "\fbuy_3"}))
	assert.Equal(t, "store", CallbackData(&tele.Callback{Data: "store"}))
	assert.Empty(t, CallbackData(nil))
}
