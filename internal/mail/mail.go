// Package mail sends transactional emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"

	"github.com/vadimbarashkov/shortly/internal/config"
)

// Client wraps an SMTP connection and renders the message templates.
type Client struct {
	smtp *mail.Client
	from string
}

// NewClient dials nothing up front; the connection is established per send.
func NewClient(cfg config.SMTP) (*Client, error) {
	const op = "mail.NewClient"

	smtp, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create smtp client: %w", op, err)
	}

	return &Client{smtp: smtp, from: cfg.From}, nil
}

// SendResetLink mails the password reset link to the user.
func (c *Client) SendResetLink(ctx context.Context, to, name, resetLink string) error {
	const op = "mail.Client.SendResetLink"

	body, err := renderTemplate(resetLinkTmpl, resetLinkData{Name: name, ResetLink: resetLink})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.send(ctx, to, "Reset your password", body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SendPassResetInfo mails the confirmation that the password was changed.
func (c *Client) SendPassResetInfo(ctx context.Context, to, name string) error {
	const op = "mail.Client.SendPassResetInfo"

	body, err := renderTemplate(passResetInfoTmpl, passResetInfoData{Name: name})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := c.send(ctx, to, "Your password was changed", body); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()

	if err := msg.From(c.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := c.smtp.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return buf.String(), nil
}
