// Package state keeps per-user conversation sessions for Telegram bots.
// Stores are generic over the session value so each bot picks its own shape.
package state
