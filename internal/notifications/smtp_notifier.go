package notifications

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	phxlog "birthdaybook/pkg/log"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

// SMTPConfig descreve o servidor SMTP de saída.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// SMTPEmailNotifier envia emails texto via SMTP com jordan-wright/email.
type SMTPEmailNotifier struct {
	cfg  SMTPConfig
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewSMTPEmailNotifier(cfg SMTPConfig) (*SMTPEmailNotifier, error) {
	if cfg.Host == "" || cfg.Sender == "" {
		return nil, errors.New("SMTP_HOST and MAIL_SENDER are required for SMTP")
	}
	return &SMTPEmailNotifier{
		cfg: cfg,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}, nil
}

// Send blocks until the server accepts the message or ctx is done. The SMTP
// exchange itself is not cancellable; on timeout it finishes in the background.
func (s *SMTPEmailNotifier) Send(ctx context.Context, to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.Sender
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	done := make(chan error, 1)
	go func() { done <- s.send(e, addr, auth) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		phxlog.L.Info("Successfully sent email", zap.String("recipient", to), zap.String("subject", subject))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
