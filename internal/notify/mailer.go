// Package notify delivers investor-facing email. Delivery failures are
// logged and surfaced to callers but are never fatal to the operation that
// triggered the message.
package notify

import (
	"context"
	"fmt"
	ht "html/template"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// SMTPMailer implements domain.Mailer over SMTP.
type SMTPMailer struct {
	client      *mail.Client
	fromName    string
	fromEmail   string
	frontendURL string
	logger      *slog.Logger

	confirmTpl *ht.Template
	cancelTpl  *ht.Template
}

// MailerConfig holds SMTP connection and sender identity parameters.
type MailerConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromName    string
	FromEmail   string
	FrontendURL string
}

// NewSMTPMailer builds the SMTP client and parses the message templates.
func NewSMTPMailer(cfg MailerConfig, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("notify: smtp client: %w", err)
	}

	confirmTpl, err := ht.New("confirmation").Parse(confirmationBody)
	if err != nil {
		return nil, fmt.Errorf("notify: parse confirmation template: %w", err)
	}
	cancelTpl, err := ht.New("cancellation").Parse(cancellationBody)
	if err != nil {
		return nil, fmt.Errorf("notify: parse cancellation template: %w", err)
	}

	return &SMTPMailer{
		client:      client,
		fromName:    cfg.FromName,
		fromEmail:   cfg.FromEmail,
		frontendURL: cfg.FrontendURL,
		logger:      logger.With(slog.String("component", "mailer")),
		confirmTpl:  confirmTpl,
		cancelTpl:   cancelTpl,
	}, nil
}

type mailData struct {
	Name        string
	Details     domain.InvestmentDetails
	FrontendURL string
}

// SendConfirmation emails the investor that their investment is confirmed.
func (m *SMTPMailer) SendConfirmation(ctx context.Context, to, name string, details domain.InvestmentDetails) error {
	subject := fmt.Sprintf("Investment confirmed: %s", details.OpportunityTitle)
	return m.send(ctx, to, subject, m.confirmTpl, mailData{
		Name:        name,
		Details:     details,
		FrontendURL: m.frontendURL,
	})
}

// SendCancellation emails the investor that their investment was cancelled.
func (m *SMTPMailer) SendCancellation(ctx context.Context, to, name string, details domain.InvestmentDetails) error {
	subject := fmt.Sprintf("Investment cancelled: %s", details.OpportunityTitle)
	return m.send(ctx, to, subject, m.cancelTpl, mailData{
		Name:        name,
		Details:     details,
		FrontendURL: m.frontendURL,
	})
}

func (m *SMTPMailer) send(ctx context.Context, to, subject string, tpl *ht.Template, data mailData) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.fromEmail); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("notify: to address %q: %w", to, err)
	}
	msg.Subject(subject)
	if err := msg.SetBodyHTMLTemplate(tpl, data); err != nil {
		return fmt.Errorf("notify: render body: %w", err)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("notify: send to %s: %w", to, err)
	}

	m.logger.InfoContext(ctx, "email sent",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}

// Compile-time interface check.
var _ domain.Mailer = (*SMTPMailer)(nil)
