package media

import (
	"context"
	"fmt"

	"github.com/capitanshop/shopbot/internal/chat"
)

// TelegramStore keeps images on Telegram and references them by file id.
type TelegramStore struct{}

func (TelegramStore) Save(_ context.Context, photo chat.Attachment) (string, error) {
	if photo.FileID == "" {
		return "", fmt.Errorf("media: photo without file id")
	}
	return telegramPrefix + photo.FileID, nil
}
