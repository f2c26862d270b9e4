// Package sender отправляет письма из очередей RabbitMQ по SMTP:
// подтверждение почты, сброс пароля и напоминания о продлении подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/grocery-share/internal/lib/sl"
	"github.com/magabrotheeeer/grocery-share/internal/lib/smtp"
	"github.com/magabrotheeeer/grocery-share/internal/models"
)

// SenderService отправляет письма по заданиям из очередей.
type SenderService struct {
	transport smtp.TransportInterface
	appURL    string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, appURL string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		appURL:    appURL,
		log:       log,
	}
}

// SendAccountMail отправляет служебное письмо аккаунта по заданию
// из очереди verification: подтверждение почты или сброс пароля.
func (s *SenderService) SendAccountMail(body []byte) error {
	var job models.MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal mail job", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	var subject, bodyText string
	switch job.Kind {
	case models.MailKindVerification:
		subject = "Verify your GroceryShare email"
		bodyText = fmt.Sprintf("Welcome to GroceryShare!\n\n"+
			"Please confirm your email address by opening the link below:\n\n"+
			"%s/verify-email?token=%s\n\n"+
			"If you did not create an account, you can ignore this email.",
			s.appURL, job.Token)
	case models.MailKindPasswordReset:
		subject = "Reset your GroceryShare password"
		bodyText = fmt.Sprintf("We received a request to reset your password.\n\n"+
			"Open the link below to choose a new one:\n\n"+
			"%s/reset-password?token=%s\n\n"+
			"The link is valid for one hour. If you did not request a reset, ignore this email.",
			s.appURL, job.Token)
	default:
		s.log.Error("unknown mail job kind", slog.String("kind", job.Kind))
		return fmt.Errorf("unknown mail job kind: %s", job.Kind)
	}

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

// SendRenewalReminder отправляет напоминание о скором окончании подписки.
func (s *SenderService) SendRenewalReminder(body []byte) error {
	var job models.ReminderJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal reminder job", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Your GroceryShare subscription expires tomorrow"
	bodyText := fmt.Sprintf("Hello!\n\n"+
		"Your GroceryShare subscription ends on %s.\n\n"+
		"Renew it in your account to keep access to the shared grocery lists:\n\n"+
		"%s/subscriptions",
		job.EndDate, s.appURL)

	return s.sendEmail([]string{job.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
