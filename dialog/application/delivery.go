package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

// sendWithPhotoFallback sends msg and, if the photo is rejected, sends the
// same text without it.
func sendWithPhotoFallback(ctx context.Context, tr chat.Transport, chatID string, msg chat.Message) (chat.Handle, error) {
	if msg.PhotoURL == hotel.PhotoNotFound {
		msg.PhotoURL = ""
	}
	if msg.PhotoURL != "" {
		h, err := tr.Send(ctx, chatID, msg)
		if err == nil {
			return h, nil
		}
		logrus.WithError(err).Warnf("[DIALOG] photo %s rejected for chat %s, sending text only", msg.PhotoURL, chatID)
		msg.PhotoURL = ""
	}
	return tr.Send(ctx, chatID, msg)
}
