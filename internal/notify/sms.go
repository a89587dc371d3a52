package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"fasplanners/internal/config"
	"fasplanners/internal/domain"
	"fasplanners/internal/metrics"
)

const twilioAPIBase = "https://api.twilio.com"

// SMSService handles sending SMS messages
type SMSService struct {
	cfg     *config.SMSConfig
	apiBase string
	client  *http.Client
}

// NewSMSService creates a new SMS service
func NewSMSService(cfg *config.SMSConfig) *SMSService {
	return &SMSService{
		cfg:     cfg,
		apiBase: twilioAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers message to phoneNumber through the configured provider
func (s *SMSService) Send(ctx context.Context, phoneNumber, message string) error {
	if !s.cfg.Enabled {
		log.Debug().Str("component", "notify").Str("to", phoneNumber).Msg("SMS disabled, not sending")
		return nil
	}

	switch strings.ToLower(s.cfg.Provider) {
	case "twilio":
		return s.sendViaTwilio(ctx, s.NormalizePhone(phoneNumber), message)
	case "console", "dev", "development":
		log.Info().Str("component", "notify").Str("to", phoneNumber).Str("body", message).Msg("SMS (console provider)")
		return nil
	default:
		return fmt.Errorf("unsupported SMS provider: %s", s.cfg.Provider)
	}
}

// NormalizePhone converts a local or international number to E.164
func (s *SMSService) NormalizePhone(phone string) string {
	var digits strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			digits.WriteRune(r)
		}
	}
	n := digits.String()

	switch {
	case strings.HasPrefix(n, "+"):
		return n
	case strings.HasPrefix(n, "00"):
		return "+" + n[2:]
	case strings.HasPrefix(n, "0"):
		return "+" + s.cfg.DefaultCountryCode + n[1:]
	case s.cfg.DefaultCountryCode != "" && strings.HasPrefix(n, s.cfg.DefaultCountryCode):
		return "+" + n
	default:
		return "+" + s.cfg.DefaultCountryCode + n
	}
}

// sendViaTwilio sends SMS via Twilio API
func (s *SMSService) sendViaTwilio(ctx context.Context, phoneNumber, message string) error {
	if s.cfg.TwilioSID == "" || s.cfg.TwilioAuth == "" || s.cfg.TwilioFrom == "" {
		return fmt.Errorf("twilio not properly configured")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.apiBase, s.cfg.TwilioSID)

	form := url.Values{}
	form.Set("From", s.cfg.TwilioFrom)
	form.Set("To", phoneNumber)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(s.cfg.TwilioSID, s.cfg.TwilioAuth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		var errorResp map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorResp)
		return fmt.Errorf("twilio API error (status %d): %v", resp.StatusCode, errorResp)
	}
	return nil
}

// SMSSender sends one text message
type SMSSender interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// SMSNotifier texts the client their tracking code and status updates.
// Requests without a phone number are skipped.
type SMSNotifier struct {
	sender    SMSSender
	publicURL string
}

// NewSMSNotifier creates an SMSNotifier
func NewSMSNotifier(sender SMSSender, publicURL string) *SMSNotifier {
	return &SMSNotifier{sender: sender, publicURL: publicURL}
}

func (n *SMSNotifier) RequestSubmitted(ctx context.Context, req *domain.EventRequest) error {
	msg := fmt.Sprintf("Hi %s, thank you for your event request with Fas Exclusive Planners. Your tracking code is %s. Track it at %s",
		firstName(req.Name), req.TrackingCode, TrackingURL(n.publicURL, req.TrackingCode))
	return n.send(ctx, req, msg)
}

func (n *SMSNotifier) StatusChanged(ctx context.Context, req *domain.EventRequest) error {
	msg := fmt.Sprintf("Update on your event request %s: %s. %s",
		req.TrackingCode, req.Status.Label(), req.Status.Description())
	return n.send(ctx, req, msg)
}

func (n *SMSNotifier) send(ctx context.Context, req *domain.EventRequest, msg string) error {
	if req.Phone == nil || strings.TrimSpace(*req.Phone) == "" {
		return nil
	}
	err := n.sender.Send(ctx, *req.Phone, msg)
	metrics.RecordNotification("sms", err)
	if err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	return nil
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
