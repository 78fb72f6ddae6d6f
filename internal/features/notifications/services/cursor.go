package notifications_services

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"

	notifications_models "untitledone/internal/features/notifications/models"

	"github.com/google/uuid"
)

var ErrInvalidCursor = errors.New("invalid cursor")

func EncodeCursor(notification *notifications_models.Notification) string {
	raw := notification.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + notification.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeCursor(cursor string) (*notifications_models.NotificationCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	createdAtPart, idPart, ok := strings.Cut(string(raw), "|")
	if !ok {
		return nil, ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, createdAtPart)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &notifications_models.NotificationCursor{CreatedAt: createdAt, ID: id}, nil
}
