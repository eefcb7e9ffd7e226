// Package mailer sends price-drop alert emails through Resend.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/internal/config"
)

// Mailer sends transactional price alerts. With no API key configured it
// degrades to a logged no-op so local demos run without a Resend account.
type Mailer struct {
	client *resend.Client
	from   string
}

// New creates a mailer. A nil client (empty API key) disables sending.
func New(cfg config.EmailConfig) *Mailer {
	m := &Mailer{
		from: fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
	}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// SendPriceAlert emails a price-drop notification and returns the send ID.
// Failures are returned to the caller, which records them — alert delivery
// is never fatal to the flow that triggered it, and there are no retries.
func (m *Mailer) SendPriceAlert(ctx context.Context, to, productName string, oldPrice, newPrice, targetPrice float64, productURL string) (string, error) {
	if m.client == nil {
		log.Warn().Str("to", to).Str("product", productName).Msg("no Resend API key configured, skipping alert email")
		return "", fmt.Errorf("email disabled: no API key configured")
	}
	if productURL == "" {
		productURL = "#"
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Price Drop: %s now $%.2f!", productName, newPrice),
		Html:    alertHTML(productName, oldPrice, newPrice, targetPrice, productURL),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("send alert email: %w", err)
	}

	log.Info().Str("to", to).Str("product", productName).Str("email_id", sent.Id).Msg("price alert sent")
	return sent.Id, nil
}

// alertHTML renders the dark-themed alert body with inline styles (email
// clients ignore stylesheets).
func alertHTML(productName string, oldPrice, newPrice, targetPrice float64, productURL string) string {
	savings := oldPrice - newPrice
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Price Drop Alert</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background-color: #18181b; color: #fafafa; padding: 40px 20px; margin: 0;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #27272a; border-radius: 16px; overflow: hidden;">
    <div style="background: linear-gradient(135deg, #10b981 0%%, #14b8a6 100%%); padding: 32px; text-align: center;">
      <h1 style="margin: 0; font-size: 28px; color: white;">Price Drop Alert!</h1>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #fafafa;">%s</h2>
      <div style="background-color: #3f3f46; border-radius: 12px; padding: 24px; margin-bottom: 24px;">
        <div style="margin-bottom: 16px;">
          <span style="color: #a1a1aa;">Was:</span>
          <span style="color: #a1a1aa; text-decoration: line-through;">$%.2f</span>
        </div>
        <div style="margin-bottom: 16px;">
          <span style="color: #fafafa; font-weight: bold;">Now:</span>
          <span style="color: #10b981; font-size: 24px; font-weight: bold;">$%.2f</span>
        </div>
        <div style="padding-top: 16px; border-top: 1px solid #52525b;">
          <span style="color: #10b981;">You save:</span>
          <span style="color: #10b981; font-weight: bold;">$%.2f</span>
        </div>
      </div>
      <p style="color: #a1a1aa; margin: 0 0 24px; font-size: 14px;">
        This price is below your target of $%.2f. Don't miss out!
      </p>
      <a href="%s" style="display: inline-block; background: linear-gradient(135deg, #10b981 0%%, #14b8a6 100%%); color: white; text-decoration: none; padding: 14px 28px; border-radius: 8px; font-weight: 600; font-size: 16px;">
        View Deal
      </a>
    </div>
    <div style="padding: 24px 32px; background-color: #18181b; text-align: center;">
      <p style="margin: 0; color: #71717a; font-size: 12px;">Sent by DealHunter</p>
    </div>
  </div>
</body>
</html>`, productName, oldPrice, newPrice, savings, targetPrice, productURL)
}
