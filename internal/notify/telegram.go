package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"fasplanners/internal/domain"
	"fasplanners/internal/metrics"
)

// MessageSender is the part of the Telegram bot API used for staff alerts
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramNotifier posts new requests and status changes to a staff chat
type TelegramNotifier struct {
	sender    MessageSender
	chatID    int64
	publicURL string
}

// NewTelegramNotifier creates a notifier using a bot with the given token.
// The token is not verified until the first message is sent.
func NewTelegramNotifier(token string, chatID int64, publicURL string) (*TelegramNotifier, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, err
	}
	return NewTelegramNotifierWithSender(b, chatID, publicURL), nil
}

// NewTelegramNotifierWithSender creates a notifier on an existing sender
func NewTelegramNotifierWithSender(sender MessageSender, chatID int64, publicURL string) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, publicURL: publicURL}
}

func (n *TelegramNotifier) RequestSubmitted(ctx context.Context, req *domain.EventRequest) error {
	text := "New event request\n\n" + strings.Join(summary(req), "\n")
	if req.Message != nil && *req.Message != "" {
		text += "\n\n" + *req.Message
	}
	text += "\n\n" + TrackingURL(n.publicURL, req.TrackingCode)
	return n.send(ctx, text)
}

func (n *TelegramNotifier) StatusChanged(ctx context.Context, req *domain.EventRequest) error {
	text := fmt.Sprintf("%s (%s) is now %s", req.TrackingCode, req.Name, req.Status.Label())
	return n.send(ctx, text)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	metrics.RecordNotification("telegram", err)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
