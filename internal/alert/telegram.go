// Package alert composes and dispatches fall alerts: remote notification plus
// the local audible alarm.
package alert

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier is the remote messaging sink. Sends are fire-and-forget: the
// dispatcher logs failures but never retries or escalates.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// DefaultTelegramBase is the Telegram bot API host.
const DefaultTelegramBase = "https://api.telegram.org"

// TelegramNotifier sends alert messages through the Telegram bot API.
type TelegramNotifier struct {
	client *resty.Client
	token  string
	chatID int64
	logger *zap.Logger
}

// NewTelegramNotifier creates a notifier against the given API base (empty
// for the production host).
func NewTelegramNotifier(base, token string, chatID int64, logger *zap.Logger) *TelegramNotifier {
	if base == "" {
		base = DefaultTelegramBase
	}
	client := resty.New().
		SetBaseURL(base).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &TelegramNotifier{
		client: client,
		token:  token,
		chatID: chatID,
		logger: logger,
	}
}

// Notify posts the message as a urlencoded sendMessage call. The response is
// logged but not validated beyond transport success.
func (n *TelegramNotifier) Notify(ctx context.Context, message string) error {
	body := fmt.Sprintf("chat_id=%d&text=%s", n.chatID, url.QueryEscape(message))

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/bot%s/sendMessage", n.token))
	if err != nil {
		return fmt.Errorf("sending telegram alert: %w", err)
	}

	n.logger.Info("telegram response",
		zap.Int("status", resp.StatusCode()),
		zap.ByteString("body", resp.Body()),
	)
	return nil
}
