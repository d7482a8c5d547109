package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const (
	EmailProviderResend = "resend"
	EmailProviderSMTP   = "smtp"
	EmailProviderLog    = "log"
)

type EmailConfig struct {
	Provider string
	From     string

	ResendAPIKey string
	ResendAPIURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

func NewEmailConfig() (*EmailConfig, error) {
	cfg := &EmailConfig{
		Provider:     strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderLog)),
		From:         getEnv("FROM_EMAIL", "GHX Portal <no-reply@ghx.local>"),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		ResendAPIURL: getEnv("RESEND_API_URL", ""),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
	}
	switch cfg.Provider {
	case EmailProviderResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required for provider %q", cfg.Provider)
		}
	case EmailProviderSMTP:
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("SMTP_HOST is required for provider %q", cfg.Provider)
		}
	case EmailProviderLog:
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.Provider)
	}
	return cfg, nil
}

// Email is one outgoing HTML message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// NewMailer picks the delivery backend named by EMAIL_PROVIDER.
func NewMailer(lc fx.Lifecycle, cfg *EmailConfig, logger *zap.Logger) (Mailer, error) {
	var mailer Mailer
	switch cfg.Provider {
	case EmailProviderResend:
		client := resend.NewClient(cfg.ResendAPIKey)
		if cfg.ResendAPIURL != "" {
			u, err := url.Parse(cfg.ResendAPIURL)
			if err != nil {
				return nil, fmt.Errorf("invalid RESEND_API_URL: %w", err)
			}
			client.BaseURL = u
		}
		mailer = &ResendMailer{client: client, from: cfg.From}
	case EmailProviderSMTP:
		mailer = &SMTPMailer{
			dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
			from:   cfg.From,
		}
	default:
		mailer = &LogMailer{logger: logger}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("email service initialized", zap.String("provider", cfg.Provider))
			return nil
		},
	})
	return mailer, nil
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Send(ctx context.Context, email Email) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send email via resend: %w", err)
	}
	return nil
}

// SMTPMailer sends through a plain SMTP relay. gomail has no context support, so
// cancellation is only checked before dialing.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email via smtp: %w", err)
	}
	return nil
}

// LogMailer only logs; used in development.
type LogMailer struct {
	logger *zap.Logger
}

func (m *LogMailer) Send(_ context.Context, email Email) error {
	m.logger.Info("email (log provider)",
		zap.String("to", email.To),
		zap.String("subject", email.Subject))
	return nil
}
