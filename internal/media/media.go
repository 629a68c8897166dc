// Package media turns inbound photos into opaque image references stored on products.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/capitanshop/shopbot/internal/chat"
)

// ErrUnsupported reports a reference or backend this package cannot handle.
var ErrUnsupported = errors.New("media: unsupported")

// MaxImageBytes caps downloads made by the local and s3 backends.
const MaxImageBytes = 10 << 20

const (
	BackendTelegram = "telegram"
	BackendLocal    = "local"
	BackendS3       = "s3"
)

// Store persists a photo and returns the reference saved on the product.
type Store interface {
	Save(ctx context.Context, photo chat.Attachment) (string, error)
}

// Fetcher downloads a platform file by id.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Kind tells the shell how to send a reference.
type Kind string

const (
	KindTelegram Kind = "telegram"
	KindURL      Kind = "url"
	KindFile     Kind = "file"
)

// Ref is a parsed image reference.
type Ref struct {
	Kind  Kind
	Value string
}

const telegramPrefix = "tg:"

// Parse classifies ref: "tg:<file_id>", an http(s) URL or a local path.
func Parse(ref string) (Ref, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return Ref{}, fmt.Errorf("%w: empty reference", ErrUnsupported)
	case strings.HasPrefix(ref, telegramPrefix):
		id := strings.TrimPrefix(ref, telegramPrefix)
		if id == "" {
			return Ref{}, fmt.Errorf("%w: empty file id", ErrUnsupported)
		}
		return Ref{Kind: KindTelegram, Value: id}, nil
	case strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "http://"):
		return Ref{Kind: KindURL, Value: ref}, nil
	default:
		return Ref{Kind: KindFile, Value: ref}, nil
	}
}

// S3Config selects the bucket used by the s3 backend.
type S3Config struct {
	Bucket   string `yaml:"bucket" envconfig:"MEDIA_S3_BUCKET"`
	Region   string `yaml:"region" envconfig:"MEDIA_S3_REGION"`
	Endpoint string `yaml:"endpoint" envconfig:"MEDIA_S3_ENDPOINT"`
	// BaseURL replaces the default virtual-hosted bucket URL in references.
	BaseURL string `yaml:"base_url" envconfig:"MEDIA_S3_BASE_URL"`
	Prefix  string `yaml:"prefix" envconfig:"MEDIA_S3_PREFIX"`
}

// Config chooses and configures the backend.
type Config struct {
	Backend string   `yaml:"backend" envconfig:"MEDIA_BACKEND"`
	Dir     string   `yaml:"dir" envconfig:"MEDIA_DIR"`
	S3      S3Config `yaml:"s3"`
}

// Normalize fills defaults and validates backend specific fields.
func (c *Config) Normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = BackendTelegram
	case BackendTelegram:
	case BackendLocal:
		if c.Dir == "" {
			c.Dir = "media"
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("media.s3.bucket is required for the s3 backend")
		}
		if c.S3.Region == "" {
			c.S3.Region = "us-east-1"
		}
		if c.S3.Prefix == "" {
			c.S3.Prefix = "products"
		}
	default:
		return fmt.Errorf("%w: media backend %q; allowed: telegram, local, s3", ErrUnsupported, c.Backend)
	}
	return nil
}

// New builds the configured backend. fetcher is required by local and s3.
func New(cfg Config, fetcher Fetcher) (Store, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendLocal:
		return NewLocalStore(cfg.Dir, fetcher)
	case BackendS3:
		return NewS3Store(cfg.S3, fetcher)
	default:
		return TelegramStore{}, nil
	}
}

func fetchAll(ctx context.Context, fetcher Fetcher, fileID string) ([]byte, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("media: no fetcher configured")
	}
	rc, err := fetcher.Fetch(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("media: fetch %s: %w", fileID, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: read %s: %w", fileID, err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("media: %s exceeds %d bytes", fileID, MaxImageBytes)
	}
	return data, nil
}
