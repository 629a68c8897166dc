package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

const selectProducts = `SELECT id, name, COALESCE(description, '') AS description, COALESCE(price, 0) AS price,
	COALESCE(image_url, '') AS image_url, COALESCE(is_available, TRUE) AS is_available FROM products`

// Store is the PostgreSQL-backed catalog. Every method is a single auto-committing statement.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Add inserts p and returns the id assigned by the database.
func (s *Store) Add(ctx context.Context, p NewProduct) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO products (name, description, price, image_url, is_available) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Name, p.Description, p.Price, p.ImageURL, p.IsAvailable,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	return id, nil
}

// Edit applies patch to product id. A missing product yields false with no error.
func (s *Store) Edit(ctx context.Context, id int64, patch Patch) (bool, error) {
	if patch.Empty() {
		return false, ErrEmptyPatch
	}
	if err := validate.Struct(patch); err != nil {
		return false, fmt.Errorf("catalog: invalid patch: %w", err)
	}
	ok, err := s.Exists(ctx, id)
	if err != nil || !ok {
		return false, err
	}

	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.IsAvailable != nil {
		add("is_available", *patch.IsAvailable)
	}
	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return true, nil
}

// Delete removes product id permanently. A missing product yields false with no error.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := s.Exists(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return true, nil
}

func (s *Store) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := s.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check product %d: %w", id, err)
	}
	return ok, nil
}

// GetByID returns nil without error when the product does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p, selectProducts+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

// ListAll returns products ordered by id; limit <= 0 returns all of them.
func (s *Store) ListAll(ctx context.Context, limit int) ([]Product, error) {
	query := selectProducts + ` ORDER BY id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.list(ctx, "list products", query, args...)
}

func (s *Store) ListByAvailability(ctx context.Context, available bool) ([]Product, error) {
	return s.list(ctx, "list products by availability",
		selectProducts+` WHERE COALESCE(is_available, TRUE) = $1 ORDER BY id`, available)
}

// SearchByName matches name as a literal, case-sensitive substring.
func (s *Store) SearchByName(ctx context.Context, substring string) ([]Product, error) {
	return s.list(ctx, "search products",
		selectProducts+` WHERE name LIKE $1 ESCAPE '\' ORDER BY id`, "%"+escapeLike(substring)+"%")
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (s *Store) list(ctx context.Context, what, query string, args ...any) ([]Product, error) {
	products := []Product{}
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
