package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"labreserve-backend/internal/domain"
	"labreserve-backend/internal/logger"
)

// Mailer delivers a single message. It is the seam between email content
// and the provider.
type Mailer interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridMailer struct {
	client    sendClient
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) Mailer {
	return &sendGridMailer{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", toEmail, "subject", subject)

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := m.client.SendWithContext(ctx, message)
	if err == nil && resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", toEmail)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// logMailer is used when no provider is configured.
type logMailer struct{}

func NewLogMailer() Mailer { return logMailer{} }

func (logMailer) Send(ctx context.Context, toEmail, _, subject, _ string) error {
	logger.InfoContext(ctx, "Email delivery disabled, dropping message", "to", toEmail, "subject", subject)
	return nil
}

type emailService struct {
	mailer Mailer
}

func NewEmailService(mailer Mailer) EmailService {
	return &emailService{mailer: mailer}
}

func (s *emailService) SendReservationDecision(ctx context.Context, email, name, resourceName string, status domain.ReservationStatus, note string) error {
	subject := fmt.Sprintf("Reservation %s: %s", status, resourceName)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour reservation for %s is now %s.", name, resourceName, status)
	if note != "" {
		fmt.Fprintf(&b, "\n\nNote: %s", note)
	}
	b.WriteString("\n\nLab Reservations")

	return s.mailer.Send(ctx, email, name, subject, b.String())
}

func (s *emailService) SendReservationReminder(ctx context.Context, email, name, resourceName string, start time.Time) error {
	subject := fmt.Sprintf("Reminder: %s starts soon", resourceName)
	body := fmt.Sprintf("Hello %s,\n\nYour reservation for %s starts at %s.\n\nLab Reservations",
		name, resourceName, start.UTC().Format(time.RFC1123))
	return s.mailer.Send(ctx, email, name, subject, body)
}

func (s *emailService) SendMaintenanceNotice(ctx context.Context, email, name, resourceName string, start, end time.Time) error {
	subject := fmt.Sprintf("Scheduled maintenance: %s", resourceName)
	body := fmt.Sprintf("Hello %s,\n\n%s has maintenance scheduled from %s to %s, overlapping one of your reservations. "+
		"Some units may be unavailable.\n\nLab Reservations",
		name, resourceName, start.UTC().Format(time.RFC1123), end.UTC().Format(time.RFC1123))
	return s.mailer.Send(ctx, email, name, subject, body)
}
