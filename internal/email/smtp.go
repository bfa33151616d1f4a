package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
// It renders the same templates as BrevoSender but delivers through our own relay.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent, textContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, textContent)
	msg.AddAlternativeString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendQuoteProposalEmail(ctx context.Context, toEmail string, p QuoteProposalParams, attachments ...Attachment) error {
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
	return s.send(ctx, toEmail, subject, content, quoteProposalText(p), attachments...)
}

func (s *SMTPSender) SendQuoteReminderEmail(ctx context.Context, toEmail, recipientName, quoteNumber, proposalURL string, expiresAt time.Time) error {
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
	return s.send(ctx, toEmail, subject, content, quoteReminderText(recipientName, quoteNumber, proposalURL, expiresAt, daysRemaining))
}

func (s *SMTPSender) SendDownloadFollowUpEmail(ctx context.Context, toEmail, name, documentTitle, schedulingURL string) error {
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
	return s.send(ctx, toEmail, subject, content, downloadFollowUpText(name, documentTitle, schedulingURL))
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent, textContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent, textContent)
}
