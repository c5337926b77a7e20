package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"aria/app/config"

	"github.com/samber/do"
	"github.com/wneessen/go-mail"
)

// Client sends assistant emails over SMTP. When no sender account is
// configured the client stays disabled and sends become logged no-ops.
type Client struct {
	cfg    *config.Config
	client *mail.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	c := &Client{cfg: cfg}

	if cfg.SMTP.User == "" {
		slog.Warn("SMTP sender not configured, email delivery disabled")
		return c, nil
	}

	client, err := mail.NewClient(cfg.SMTP.Host,
		mail.WithPort(cfg.SMTP.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTP.User),
		mail.WithPassword(cfg.SMTP.Pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	c.client = client

	return c, nil
}

// SendReminder emails a due-task reminder to the task owner.
func (c *Client) SendReminder(ctx context.Context, to, name, title, notes string) error {
	if notes == "" {
		notes = "No details provided."
	}
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Task Reminder: %s", title)
	body := fmt.Sprintf(
		"Hi %s,\n\nThis is a reminder for your task:\n\nTitle: %s\nDetails: %s\n\n— Your Personal AI Assistant",
		name, title, notes,
	)

	return c.send(ctx, to, subject, body)
}

// SendWelcome greets a freshly signed-up user.
func (c *Client) SendWelcome(ctx context.Context, to, name string) error {
	subject := "Welcome to Your Personal AI Assistant"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome! We're glad you signed up. Start chatting with your personal assistant anytime.\n\n— Your Personal AI Assistant",
		name,
	)

	return c.send(ctx, to, subject, body)
}

func (c *Client) send(ctx context.Context, to, subject, body string) error {
	if c.client == nil {
		slog.Info("Email delivery disabled, skipping", "to", to, "subject", subject)
		return nil
	}

	msg := mail.NewMsg()

	if err := msg.From(c.cfg.SMTP.User); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}
