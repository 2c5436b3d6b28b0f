package notificator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"
	"github.com/pkg/errors"

	"github.com/core-coin/capwatch/pkg/logger"
)

const (
	// DefaultAPIBase is the public Telegram Bot API endpoint.
	DefaultAPIBase = "https://api.telegram.org"
	// DefaultTimeout bounds a single sendMessage call.
	DefaultTimeout = 10 * time.Second
)

// TelegramNotificator implements models.NotificationService on top of the Bot API.
// It only sends; updates are never polled.
type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot
}

func NewTelegramNotificator(logger *logger.Logger, token, apiBase string, timeout time.Duration) (*TelegramNotificator, error) {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []bot.Option{
		bot.WithServerURL(strings.TrimRight(apiBase, "/")),
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(timeout, &http.Client{Timeout: timeout}),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating telegram bot")
	}

	return &TelegramNotificator{logger: logger, bot: b}, nil
}

// SendMessage posts text to chatID as plain text with link previews disabled.
func (t *TelegramNotificator) SendMessage(ctx context.Context, chatID, text string) error {
	disablePreview := true
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
		LinkPreviewOptions: &tgModels.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
	}

	msg, err := t.bot.SendMessage(ctx, params)
	if err != nil {
		return errors.Wrap(err, "telegram sendMessage failed")
	}

	t.logger.Debugw("telegram message sent", "chat_id", chatID, "message_id", msg.ID)
	return nil
}
