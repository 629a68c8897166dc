package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/capitanshop/shopbot/core/logger"
	"github.com/capitanshop/shopbot/internal/chat"
)

// S3Store uploads images to a public-read bucket; the reference is the object URL.
type S3Store struct {
	client  s3iface.S3API
	cfg     S3Config
	fetcher Fetcher
}

// NewS3Store opens an AWS session with the default credential chain.
func NewS3Store(cfg S3Config, fetcher Fetcher) (*S3Store, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3StoreWithClient(s3.New(sess), cfg, fetcher)
}

// NewS3StoreWithClient uses an existing S3 client.
func NewS3StoreWithClient(client s3iface.S3API, cfg S3Config, fetcher Fetcher) (*S3Store, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("media: s3 backend needs a fetcher")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "products"
	}
	return &S3Store{client: client, cfg: cfg, fetcher: fetcher}, nil
}

func (s *S3Store) Save(ctx context.Context, photo chat.Attachment) (string, error) {
	data, err := fetchAll(ctx, s.fetcher, photo.FileID)
	if err != nil {
		return "", err
	}
	key := path.Join(s.cfg.Prefix, uuid.NewString()+".jpg")
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("image/jpeg"),
		ContentLength: aws.Int64(int64(len(data))),
		ACL:           aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		logger.LogEvent(ctx, logger.SVCMedia, slog.LevelError, "media.upload",
			slog.String("status", "fail"),
			slog.String("backend", BackendS3),
			logger.Err(err),
		)
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	logger.LogEvent(ctx, logger.SVCMedia, slog.LevelDebug, "media.saved",
		slog.String("status", "ok"),
		slog.String("backend", BackendS3),
		slog.Int("bytes", len(data)),
	)
	return s.objectURL(key), nil
}

func (s *S3Store) objectURL(key string) string {
	if s.cfg.BaseURL != "" {
		return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
