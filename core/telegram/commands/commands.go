// Package commands describes slash commands registered with the bot.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are hidden from the menu and rejected for non-admins.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Args returns the trimmed text following the command word.
func Args(c tele.Context) string {
	if m := c.Message(); m != nil && m.Payload != "" {
		return strings.TrimSpace(m.Payload)
	}
	_, rest, _ := strings.Cut(strings.TrimSpace(c.Text()), " ")
	return strings.TrimSpace(rest)
}
