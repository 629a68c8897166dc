package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/capitanshop/shopbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryCallbackResolution(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterCallback("store", noop))
	require.NoError(t, r.RegisterCallback("buy_special", noop))
	require.NoError(t, r.RegisterCallbackPrefix("buy_", noop))
	require.NoError(t, r.RegisterCallbackPrefix("b", noop))

	assert.Error(t, r.RegisterCallback("store", noop))
	assert.Error(t, r.RegisterCallbackPrefix("buy_", noop))
	assert.Error(t, r.RegisterCallback("", noop))

	key, _, ok := r.ResolveCallback("store")
	assert.True(t, ok)
	assert.Equal(t, "store", key)

	key, _, ok = r.ResolveCallback("buy_special")
	assert.True(t, ok)
	assert.Equal(t, "buy_special", key)

	key, _, ok = r.ResolveCallback("buy_12")
	assert.True(t, ok)
	assert.Equal(t, "buy_*", key)

	key, _, ok = r.ResolveCallback("back")
	assert.True(t, ok)
	assert.Equal(t, "b*", key)

	_, _, ok = r.ResolveCallback("unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{"b*", "buy_*", "buy_special", "store"}, r.ListCallbacks())
}

func TestRegistryCommands(t *testing.T) {
	r := NewRegistry()
	r.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Main menu", Aliases: []string{"menu"}})
	r.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Stats", AdminOnly: true})
	r.RegisterCommand("nostash", commands.Command{Handler: noop, Description: "x"})
	r.RegisterCommand("/empty", commands.Command{Handler: noop})

	assert.Len(t, r.Commands(), 2)
	visible := r.ListCommands(true)
	require.Len(t, visible, 1)
	assert.Equal(t, "start", visible[0].Text)

	key, _, ok := r.LookupCommand("/menu@shopbot extra")
	assert.True(t, ok)
	assert.Equal(t, "/start", key)
	_, _, ok = r.LookupCommand("hello")
	assert.False(t, ok)
}
