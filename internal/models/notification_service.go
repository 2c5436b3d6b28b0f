package models

import "context"

// NotificationService delivers a plain text message to a chat.
type NotificationService interface {
	SendMessage(ctx context.Context, chatID, text string) error
}
