package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"funnel_backend/platform/config"
)

// BrevoSender delivers email through the Brevo transactional API.
type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoAttachment struct {
	Content string `json:"content"` // base64-encoded file content
	Name    string `json:"name"`
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent,omitempty"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

// NewBrevoSender creates a Brevo-backed sender.
func NewBrevoSender(cfg config.EmailConfig) *BrevoSender {
	return &BrevoSender{
		apiKey:    cfg.GetBrevoAPIKey(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BrevoSender) SendQuoteProposalEmail(ctx context.Context, toEmail string, p QuoteProposalParams, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectQuoteProposalFmt, p.QuoteNumber)
	content, err := renderEmailTemplate("quote_proposal.html", quoteProposalEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your quote is ready",
			Heading:  "Your quote is ready",
			CTALabel: "View proposal",
			CTAURL:   p.ProposalURL,
		},
		RecipientName:   p.RecipientName,
		QuoteNumber:     p.QuoteNumber,
		Tier:            p.Tier,
		AnnualFormatted: formatCurrencyUSD(p.AnnualCents),
		TotalFormatted:  formatCurrencyUSD(p.TotalCents),
		TermYears:       p.TermYears,
		ExpiresOn:       formatDate(p.ExpiresAt),
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content, quoteProposalText(p), attachments...)
}

func (b *BrevoSender) SendQuoteReminderEmail(ctx context.Context, toEmail, recipientName, quoteNumber, proposalURL string, expiresAt time.Time) error {
	daysRemaining := int(time.Until(expiresAt).Hours() / 24)
	subject := fmt.Sprintf(subjectQuoteReminderLast, quoteNumber)
	if daysRemaining > 0 {
		subject = fmt.Sprintf(subjectQuoteReminderFmt, quoteNumber, daysRemaining)
	}

	content, err := renderEmailTemplate("quote_reminder.html", quoteReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your quote expires soon",
			Heading:  "Your quote expires soon",
			CTALabel: "Review quote",
			CTAURL:   proposalURL,
		},
		RecipientName: recipientName,
		QuoteNumber:   quoteNumber,
		ExpiresOn:     formatDate(expiresAt),
		DaysRemaining: daysRemaining,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content, quoteReminderText(recipientName, quoteNumber, proposalURL, expiresAt, daysRemaining))
}

func (b *BrevoSender) SendDownloadFollowUpEmail(ctx context.Context, toEmail, name, documentTitle, schedulingURL string) error {
	subject := fmt.Sprintf(subjectDownloadFollowUpFmt, documentTitle)
	content, err := renderEmailTemplate("download_followup.html", downloadFollowUpEmailData{
		baseEmailData: baseEmailData{
			Title:    "Thanks for downloading",
			Heading:  "Thanks for downloading",
			CTALabel: "Schedule a call",
			CTAURL:   schedulingURL,
		},
		Name:          name,
		DocumentTitle: documentTitle,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content, downloadFollowUpText(name, documentTitle, schedulingURL))
}

func (b *BrevoSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent, textContent string) error {
	return b.send(ctx, toEmail, subject, htmlContent, textContent)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent, textContent string, attachments ...Attachment) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
		TextContent: textContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	for _, att := range attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Content: base64.StdEncoding.EncodeToString(att.Content),
			Name:    att.FileName,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
