package notifications

import (
	"context"

	"birthdaybook/pkg/config"
	phxlog "birthdaybook/pkg/log"

	"go.uber.org/zap"
)

// EmailNotifier define a interface para um notificador de email.
type EmailNotifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// DefaultEmailNotifier é o notificador padrão usado pela aplicação.
var DefaultEmailNotifier EmailNotifier = &logNotifier{redact: true}

// InitEmailService escolhe o notificador de acordo com MAIL_PROVIDER.
// Qualquer falha de inicialização cai para o logNotifier, para que o fluxo
// de reset continue funcionando em desenvolvimento.
func InitEmailService() {
	log := phxlog.L.Named("InitEmailService")

	switch config.Cfg.MailProvider {
	case "ses":
		notifier, err := NewSESEmailNotifier(context.Background(), config.Cfg.AWSRegion, config.Cfg.MailSender)
		if err != nil {
			log.Error("Failed to initialize SES email service, falling back to log notifier", zap.Error(err))
			DefaultEmailNotifier = newLogNotifier()
			return
		}
		DefaultEmailNotifier = notifier
		log.Info("AWS SES email service initialized.", zap.String("sender", config.Cfg.MailSender), zap.String("region", config.Cfg.AWSRegion))
	case "smtp":
		notifier, err := NewSMTPEmailNotifier(SMTPConfig{
			Host:     config.Cfg.SMTPHost,
			Port:     config.Cfg.SMTPPort,
			Username: config.Cfg.SMTPUser,
			Password: config.Cfg.SMTPPassword,
			Sender:   config.Cfg.MailSender,
		})
		if err != nil {
			log.Error("Failed to initialize SMTP email service, falling back to log notifier", zap.Error(err))
			DefaultEmailNotifier = newLogNotifier()
			return
		}
		DefaultEmailNotifier = notifier
		log.Info("SMTP email service initialized.", zap.String("host", config.Cfg.SMTPHost), zap.Int("port", config.Cfg.SMTPPort))
	default:
		DefaultEmailNotifier = newLogNotifier()
		log.Warn("No mail provider configured. Emails will only be logged.", zap.String("provider", config.Cfg.MailProvider))
	}
}

// logNotifier apenas loga o email. Usado em desenvolvimento e como fallback.
// Com redact o corpo (que carrega links de reset) não vai para o log.
type logNotifier struct {
	redact bool
}

func newLogNotifier() *logNotifier {
	return &logNotifier{redact: config.Cfg.Environment != "development"}
}

func (n *logNotifier) Send(ctx context.Context, to, subject, body string) error {
	fields := []zap.Field{
		zap.String("to", to),
		zap.String("subject", subject),
	}
	if n.redact {
		fields = append(fields, zap.Int("body_bytes", len(body)))
		phxlog.L.Warn("Email not delivered: no mail provider available, body redacted", fields...)
		return nil
	}
	phxlog.L.Info("--- SIMULATING EMAIL SEND ---", append(fields, zap.String("body", body))...)
	return nil
}
