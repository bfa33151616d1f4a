// Package email renders and delivers transactional email for the funnel:
// quote proposals, download follow-ups and expiry reminders.
package email

import (
	"context"
	"time"

	"funnel_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes (base64-encoded for Brevo)
	FileName string // e.g. "quote-Q-00042.pdf"
	MIMEType string // e.g. "application/pdf"
}

// QuoteProposalParams carries the fields rendered into the proposal email.
type QuoteProposalParams struct {
	RecipientName string
	QuoteNumber   string
	Tier          string
	AnnualCents   int64
	TotalCents    int64
	TermYears     int
	ProposalURL   string
	ExpiresAt     time.Time
}

// Sender delivers transactional email. Every message carries both an HTML
// body and an equivalent plain-text body.
type Sender interface {
	SendQuoteProposalEmail(ctx context.Context, toEmail string, p QuoteProposalParams, attachments ...Attachment) error
	SendQuoteReminderEmail(ctx context.Context, toEmail, recipientName, quoteNumber, proposalURL string, expiresAt time.Time) error
	SendDownloadFollowUpEmail(ctx context.Context, toEmail, name, documentTitle, schedulingURL string) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent, textContent string) error
}

// NoopSender satisfies Sender without delivering anything. Used when email
// is disabled in configuration.
type NoopSender struct{}

func (NoopSender) SendQuoteProposalEmail(ctx context.Context, toEmail string, p QuoteProposalParams, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendQuoteReminderEmail(ctx context.Context, toEmail, recipientName, quoteNumber, proposalURL string, expiresAt time.Time) error {
	return nil
}

func (NoopSender) SendDownloadFollowUpEmail(ctx context.Context, toEmail, name, documentTitle, schedulingURL string) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent, textContent string) error {
	return nil
}

// NewSender selects a transport from configuration: SMTP when a host is
// configured, the Brevo HTTP API otherwise, a no-op when email is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		), nil
	}

	return NewBrevoSender(cfg), nil
}
