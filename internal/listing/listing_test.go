package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/capitanshop/shopbot/internal/catalog"
)

type fakeSource struct {
	products []catalog.Product
	err      error
}

func (f fakeSource) ListAll(context.Context, int) ([]catalog.Product, error) {
	return f.products, f.err
}

func TestProductListProjectsEveryRow(t *testing.T) {
	svc := NewService(fakeSource{products: []catalog.Product{
		{ID: 2, Name: "Hat", Description: "Warm", Price: 10, ImageURL: "tg:a", IsAvailable: true},
		{ID: 5, Name: "Cap", Price: 3},
	}})
	got := svc.ProductList(context.Background())
	assert.Equal(t, []ProductView{
		{ID: 2, Name: "Hat", Description: "Warm", Price: 10, Image: "tg:a", Available: true},
		{ID: 5, Name: "Cap", Price: 3},
	}, got)
}

func TestProductListDegradesToEmpty(t *testing.T) {
	svc := NewService(fakeSource{err: errors.New("db down")})
	got := svc.ProductList(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
