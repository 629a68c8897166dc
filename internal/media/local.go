package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/internal/chat"
)

// LocalStore downloads images into a directory; the reference is the file path.
type LocalStore struct {
	dir     string
	fetcher Fetcher
}

func NewLocalStore(dir string, fetcher Fetcher) (*LocalStore, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("media: local backend needs a fetcher")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create %s: %w", dir, err)
	}
	return &LocalStore{dir: dir, fetcher: fetcher}, nil
}

func (s *LocalStore) Save(ctx context.Context, photo chat.Attachment) (string, error) {
	data, err := fetchAll(ctx, s.fetcher, photo.FileID)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("media: write %s: %w", path, err)
	}
	logger.LogEvent(ctx, logger.SVCMedia, slog.LevelDebug, "media.saved",
		slog.String("status", "ok"),
		slog.String("backend", BackendLocal),
		slog.Int("bytes", len(data)),
	)
	return path, nil
}
