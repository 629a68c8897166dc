// Package users keeps registered chat users and their append-only action log.
package users

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Action is one logged user interaction.
type Action struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Action    string    `db:"action"`
	Timestamp time.Time `db:"timestamp"`
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Save registers id; saving an existing user is a no-op.
func (s *Store) Save(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, id); err != nil {
		return fmt.Errorf("failed to save user %d: %w", id, err)
	}
	return nil
}

// All returns every registered user id in ascending order.
func (s *Store) All(ctx context.Context) ([]int64, error) {
	ids := []int64{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

// SaveAction appends label to the log of id, registering the user first when needed.
// The two statements are not atomic.
func (s *Store) SaveAction(ctx context.Context, id int64, label string) error {
	if err := s.Save(ctx, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO user_actions (user_id, action) VALUES ($1, $2)`, id, label); err != nil {
		return fmt.Errorf("failed to save action %q for user %d: %w", label, id, err)
	}
	return nil
}

// Actions returns the newest actions of id first; limit <= 0 returns all of them.
func (s *Store) Actions(ctx context.Context, id int64, limit int) ([]Action, error) {
	query := `SELECT id, user_id, action, timestamp FROM user_actions WHERE user_id = $1 ORDER BY timestamp DESC, id DESC`
	args := []any{id}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	actions := []Action{}
	if err := s.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list actions for user %d: %w", id, err)
	}
	return actions, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
