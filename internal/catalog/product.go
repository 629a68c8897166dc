// Package catalog persists the products offered by the shop.
package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyPatch is returned by Edit when the patch changes nothing.
var ErrEmptyPatch = errors.New("catalog: empty patch")

var validate = validator.New()

// Product is one catalog record. Price is in whole units of the shop currency.
type Product struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Price       int64  `db:"price"`
	ImageURL    string `db:"image_url"`
	IsAvailable bool   `db:"is_available"`
}

// NewProduct carries the fields of a product that is about to be inserted.
type NewProduct struct {
	Name        string `validate:"required"`
	Description string
	Price       int64 `validate:"gte=0"`
	ImageURL    string
	IsAvailable bool
}

// Validate checks the insert invariants.
func (p NewProduct) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("catalog: invalid product: %w", err)
	}
	return nil
}

// Patch lists the columns Edit should change; nil fields are left alone.
type Patch struct {
	Name        *string
	Description *string
	Price       *int64 `validate:"omitempty,gte=0"`
	ImageURL    *string
	IsAvailable *bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.ImageURL == nil && p.IsAvailable == nil
}

// Available is a patch that only toggles availability.
func Available(v bool) Patch {
	return Patch{IsAvailable: &v}
}
