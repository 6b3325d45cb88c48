package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Address is a mailbox with display name.
type Address struct {
	Email string
	Name  string
}

// Mail is a single plain text message to one recipient.
type Mail struct {
	To      Address
	Subject string
	Body    string
}

// Sender delivers mails. Implementations make exactly one attempt.
type Sender interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPConfig holds the relay account. An empty From falls back to Username.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends mails through an SMTP relay.
type SMTPSender struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(config SMTPConfig) *SMTPSender {
	return &SMTPSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, m Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	from := s.config.From
	if from == "" {
		from = s.config.Username
	}
	msg.SetAddressHeader("From", from, s.config.FromName)
	msg.SetAddressHeader("To", m.To.Email, m.To.Name)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To.Email, err)
	}
	return nil
}

// LogSender writes mails to the logger instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender for deployments without SMTP relay.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, m Mail) error {
	s.logger.Info("mail not delivered, smtp disabled",
		zap.String("to", m.To.Email),
		zap.String("subject", m.Subject),
		zap.String("body", m.Body),
	)
	return nil
}
