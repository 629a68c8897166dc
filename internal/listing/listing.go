// Package listing projects the catalog into display-ready product views.
package listing

import (
	"context"
	"log/slog"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/internal/catalog"
)

// ProductView is the read-only shape shown to users.
type ProductView struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Image       string
	Available   bool
}

// Source is the catalog read the service needs.
type Source interface {
	ListAll(ctx context.Context, limit int) ([]catalog.Product, error)
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// ProductList returns every product. Store failures are logged and yield an empty list.
func (s *Service) ProductList(ctx context.Context) []ProductView {
	products, err := s.src.ListAll(ctx, 0)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCCatalog, slog.LevelError, "product_list",
			slog.String("status", "fail"),
			logger.Err(err),
		)
		return []ProductView{}
	}
	return Views(products)
}

// Views converts catalog rows into views, keeping their order.
func Views(products []catalog.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, ProductView{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.ImageURL,
			Available:   p.IsAvailable,
		})
	}
	return views
}
