package users

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

	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.ExecContext(ctx, `TRUNCATE users CASCADE`)
	require.NoError(t, err)

	s := NewStore(db)
	require.NoError(t, s.Save(ctx, 77))
	require.NoError(t, s.Save(ctx, 77))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.SaveAction(ctx, 78, "clicked_store"))
	require.NoError(t, s.SaveAction(ctx, 78, "clicked_product_list"))
	ids, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{77, 78}, ids)

	actions, err := s.Actions(ctx, 78, 0)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "clicked_product_list", actions[0].Action)

	_, err = db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, 78)
	require.NoError(t, err)
	actions, err = s.Actions(ctx, 78, 0)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
