// Package notify tells staff and clients about new requests and status changes.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"fasplanners/internal/config"
	"fasplanners/internal/domain"
)

// Notifier is informed after a request is stored or its status changes
type Notifier interface {
	RequestSubmitted(ctx context.Context, req *domain.EventRequest) error
	StatusChanged(ctx context.Context, req *domain.EventRequest) error
}

// Nop discards every notification
type Nop struct{}

func (Nop) RequestSubmitted(context.Context, *domain.EventRequest) error { return nil }
func (Nop) StatusChanged(context.Context, *domain.EventRequest) error    { return nil }

// Multi fans a notification out to every notifier and joins their errors
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a Multi over notifiers
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

func (m *Multi) RequestSubmitted(ctx context.Context, req *domain.EventRequest) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.RequestSubmitted(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) StatusChanged(ctx context.Context, req *domain.EventRequest) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.StatusChanged(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes notifications to the application log. It stands in when no
// delivery channel is configured.
type Log struct{}

func (Log) RequestSubmitted(_ context.Context, req *domain.EventRequest) error {
	log.Info().
		Str("component", "notify").
		Str("tracking_code", req.TrackingCode).
		Str("name", req.Name).
		Msg("New event request received")
	return nil
}

func (Log) StatusChanged(_ context.Context, req *domain.EventRequest) error {
	log.Info().
		Str("component", "notify").
		Str("tracking_code", req.TrackingCode).
		Str("status", string(req.Status)).
		Msg("Event request status changed")
	return nil
}

// New builds the notifier for every enabled channel in cfg
func New(cfg *config.Config) (Notifier, error) {
	var notifiers []Notifier

	if cfg.Email.Enabled {
		notifiers = append(notifiers, NewEmailNotifier(NewEmailService(&cfg.Email), cfg.Email.AdminEmail, cfg.App.PublicURL))
	}
	if cfg.SMS.Enabled {
		notifiers = append(notifiers, NewSMSNotifier(NewSMSService(&cfg.SMS), cfg.App.PublicURL))
	}
	if cfg.Telegram.Enabled {
		tg, err := NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.App.PublicURL)
		if err != nil {
			return nil, fmt.Errorf("create telegram notifier: %w", err)
		}
		notifiers = append(notifiers, tg)
	}

	if len(notifiers) == 0 {
		return Log{}, nil
	}
	return NewMulti(notifiers...), nil
}

// TrackingURL is the public page showing the status of code
func TrackingURL(publicURL, code string) string {
	return strings.TrimRight(publicURL, "/") + "/track?code=" + code
}

// summary lists the filled-in details of req as "Label: value" lines
func summary(req *domain.EventRequest) []string {
	lines := []string{
		"Tracking code: " + req.TrackingCode,
		"Name: " + req.Name,
		"Email: " + req.Email,
	}
	add := func(label string, v *string) {
		if v != nil && *v != "" {
			lines = append(lines, label+": "+*v)
		}
	}
	add("Phone", req.Phone)
	add("Category", req.EventCategory)
	add("Event type", req.EventType)
	if req.EventDate != nil {
		lines = append(lines, "Date: "+req.EventDate.Format("January 2, 2006"))
	}
	if req.GuestCount != nil {
		lines = append(lines, "Guests: "+strconv.Itoa(*req.GuestCount))
	}
	add("Venue", req.Venue)
	add("Budget", req.BudgetRange)
	add("Menu", req.MenuCategory)
	add("Decor theme", req.DecorTheme)
	if n := len(req.Images()); n > 0 {
		lines = append(lines, "Inspiration images: "+strconv.Itoa(n))
	}
	return lines
}
