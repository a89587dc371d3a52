package notify

import (
	"context"
	"fmt"
	"html"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"fasplanners/internal/config"
	"fasplanners/internal/domain"
	"fasplanners/internal/metrics"
)

// Mailer sends one multipart email
type Mailer interface {
	SendHTMLEmail(to, subject, htmlBody, textBody string) error
}

// EmailService sends email over SMTP
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendHTMLEmail sends an HTML email with plain text fallback
func (s *EmailService) SendHTMLEmail(to, subject, htmlBody, textBody string) error {
	if !s.cfg.Enabled {
		log.Debug().Str("component", "notify").Str("to", to).Str("subject", subject).Msg("Email disabled, not sending")
		return nil
	}

	// Validate configuration
	if s.cfg.SMTPHost == "" || s.cfg.Username == "" || s.cfg.Password == "" {
		return fmt.Errorf("email service not properly configured")
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	from := s.cfg.FromEmail
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.FromEmail)
	}

	message := buildMessage(from, to, subject, htmlBody, textBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody, textBody string) string {
	boundary := fmt.Sprintf("----=_Part_%d", time.Now().UnixNano())

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(to))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(textBody + "\r\n")

	if htmlBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
		b.WriteString(htmlBody + "\r\n")
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}

// headerValue folds a value onto one line so it cannot start a new header
func headerValue(v string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, v)
}

// EmailNotifier alerts the events team and confirms to the client by email
type EmailNotifier struct {
	mailer     Mailer
	adminEmail string
	publicURL  string
}

// NewEmailNotifier creates an EmailNotifier. An empty adminEmail skips the team alert.
func NewEmailNotifier(mailer Mailer, adminEmail, publicURL string) *EmailNotifier {
	return &EmailNotifier{mailer: mailer, adminEmail: adminEmail, publicURL: publicURL}
}

func (n *EmailNotifier) RequestSubmitted(ctx context.Context, req *domain.EventRequest) error {
	var firstErr error

	if n.adminEmail != "" {
		subject := fmt.Sprintf("New Event Request %s from %s", req.TrackingCode, req.Name)
		err := n.mailer.SendHTMLEmail(n.adminEmail, subject, n.adminHTML(req), n.adminText(req))
		metrics.RecordNotification("email", err)
		if err != nil {
			firstErr = fmt.Errorf("admin alert: %w", err)
		}
	}

	subject := fmt.Sprintf("We received your event request (%s)", req.TrackingCode)
	err := n.mailer.SendHTMLEmail(req.Email, subject, n.confirmationHTML(req), n.confirmationText(req))
	metrics.RecordNotification("email", err)
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("client confirmation: %w", err)
	}
	return firstErr
}

func (n *EmailNotifier) StatusChanged(ctx context.Context, req *domain.EventRequest) error {
	subject := fmt.Sprintf("Your event request %s: %s", req.TrackingCode, req.Status.Label())
	link := TrackingURL(n.publicURL, req.TrackingCode)

	text := fmt.Sprintf(`Hello %s,

The status of your event request %s is now: %s

%s

Track your request: %s

Fas Exclusive Planners`, req.Name, req.TrackingCode, req.Status.Label(), req.Status.Description(), link)

	body := fmt.Sprintf(`<p>Hello %s,</p>
<p>The status of your event request <strong>%s</strong> is now <strong>%s</strong>.</p>
<p>%s</p>
<p><a href="%s" style="color: #B8860B;">Track your request</a></p>`,
		html.EscapeString(req.Name), req.TrackingCode, html.EscapeString(req.Status.Label()),
		html.EscapeString(req.Status.Description()), html.EscapeString(link))

	err := n.mailer.SendHTMLEmail(req.Email, subject, wrapHTML(subject, body), text)
	metrics.RecordNotification("email", err)
	if err != nil {
		return fmt.Errorf("status email: %w", err)
	}
	return nil
}

func (n *EmailNotifier) adminText(req *domain.EventRequest) string {
	text := "New Event Request\n\n" + strings.Join(summary(req), "\n")
	if req.DecorVision != nil && *req.DecorVision != "" {
		text += "\n\nDecor vision:\n" + *req.DecorVision
	}
	if req.Message != nil && *req.Message != "" {
		text += "\n\nMessage:\n" + *req.Message
	}
	return text + fmt.Sprintf("\n\nEvent Request ID: #%d", req.ID)
}

func (n *EmailNotifier) adminHTML(req *domain.EventRequest) string {
	var rows strings.Builder
	for _, line := range summary(req) {
		label, value, _ := strings.Cut(line, ": ")
		fmt.Fprintf(&rows, "<p><strong>%s:</strong> %s</p>\n", html.EscapeString(label), html.EscapeString(value))
	}

	body := fmt.Sprintf(`<h2 style="color: #B8860B;">New Event Request</h2>
<div style="background: #FAF7F0; padding: 20px; border-radius: 8px; margin: 20px 0;">
%s<p><strong>Submitted:</strong> %s</p>
</div>`, rows.String(), req.CreatedAt.Format("January 2, 2006 at 3:04 PM"))

	if req.Message != nil && *req.Message != "" {
		body += fmt.Sprintf(`
<div style="padding: 20px; border-left: 4px solid #B8860B; margin: 20px 0;">
<h3 style="margin-top: 0;">Message:</h3>
<p style="white-space: pre-wrap;">%s</p>
</div>`, html.EscapeString(*req.Message))
	}
	body += fmt.Sprintf(`
<p style="color: #64748B; font-size: 14px;">Event Request ID: #%d</p>`, req.ID)

	return wrapHTML("New Event Request", body)
}

func (n *EmailNotifier) confirmationText(req *domain.EventRequest) string {
	return fmt.Sprintf(`Hello %s,

Thank you for choosing Fas Exclusive Planners. We've received your event request and our team will contact you within 24 hours.

Your tracking code is: %s

Check the status of your request at any time: %s

Fas Exclusive Planners`, req.Name, req.TrackingCode, TrackingURL(n.publicURL, req.TrackingCode))
}

func (n *EmailNotifier) confirmationHTML(req *domain.EventRequest) string {
	link := TrackingURL(n.publicURL, req.TrackingCode)
	body := fmt.Sprintf(`<h2 style="color: #B8860B;">Thank you, %s!</h2>
<p>We've received your event request and our team will contact you within 24 hours.</p>
<div style="text-align: center; padding: 24px; background: #FAF7F0; border-radius: 12px; margin: 24px 0;">
<p style="margin: 0 0 8px; color: #64748B;">Your tracking code</p>
<p style="margin: 0; font-size: 28px; font-weight: 700; letter-spacing: 2px;">%s</p>
</div>
<p><a href="%s" style="color: #B8860B;">Track your request</a></p>`,
		html.EscapeString(req.Name), req.TrackingCode, html.EscapeString(link))
	return wrapHTML("Event Request Received", body)
}

func wrapHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #334155;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
%s
        <p style="margin-top: 32px; font-size: 12px; color: #94A3B8;">&copy; %d Fas Exclusive Planners</p>
    </div>
</body>
</html>`, html.EscapeString(title), body, time.Now().Year())
}
