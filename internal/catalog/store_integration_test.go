package catalog

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitanshop/shopbot/core/database"
	"github.com/capitanshop/shopbot/migrations"
)

func TestStorePostgres(t *testing.T) {
	url := os.Getenv("SHOPBOT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SHOPBOT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	cfg := database.Config{URL: url}
	require.NoError(t, cfg.Normalize())
	require.NoError(t, database.RunMigrations(ctx, cfg, migrations.FS))
	require.NoError(t, database.RunMigrations(ctx, cfg, migrations.FS))

	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.ExecContext(ctx, `TRUNCATE products RESTART IDENTITY`)
	require.NoError(t, err)

	s := NewStore(db)
	in := NewProduct{Name: "Hat", Description: "Warm hat", Price: 1500, ImageURL: "tg:f", IsAvailable: true}
	id, err := s.Add(ctx, in)
	require.NoError(t, err)
	other, err := s.Add(ctx, NewProduct{Name: "100%_cotton", Price: 1})
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	p, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price, ImageURL: in.ImageURL, IsAvailable: true}, *p)

	found, err := s.SearchByName(ctx, "0%_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, other, found[0].ID)
	found, err = s.SearchByName(ctx, "hat")
	require.NoError(t, err)
	assert.Empty(t, found)

	ok, err := s.Delete(ctx, other+100)
	require.NoError(t, err)
	assert.False(t, ok)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err = s.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	exists, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, exists)
}
