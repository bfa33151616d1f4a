// Package notifications reacts to domain events by queueing emails through
// the outbox. Handlers run off the request path; a failed notification is
// logged by the bus and never surfaces to the visitor.
package notifications

import (
	"context"
	"fmt"
	"html"
	"time"

	"funnel_backend/internal/email/outbox"
	"funnel_backend/internal/events"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

// Outbox is the slice of the email outbox this module needs.
type Outbox interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
	CancelPendingFor(ctx context.Context, recipient string) (int64, error)
}

// Module subscribes to domain events and turns them into outbox emails:
// sales alerts for qualified leads and quote activity, a scheduling nudge
// for capped downloaders, and cancellation of pending mail to suppressed
// recipients.
type Module struct {
	outbox        Outbox
	salesEmail    string
	schedulingURL string
	log           *logger.Logger
}

// NewModule creates the notifications module. An empty sales address
// disables the sales alerts; the other handlers still run.
func NewModule(ob Outbox, cfg config.NotificationsConfig, log *logger.Logger) *Module {
	return &Module{
		outbox:        ob,
		salesEmail:    cfg.GetSalesNotifyEmail(),
		schedulingURL: cfg.GetSchedulingURL(),
		log:           log,
	}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadQualified{}.EventName(), m)
	bus.Subscribe(events.DownloadLimitReached{}.EventName(), m)
	bus.Subscribe(events.QuoteSent{}.EventName(), m)
	bus.Subscribe(events.QuoteExpiringSoon{}.EventName(), m)
	bus.Subscribe(events.RecipientSuppressed{}.EventName(), m)

	m.log.Info("notifications module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadQualified:
		return m.handleLeadQualified(ctx, e)
	case events.DownloadLimitReached:
		return m.handleDownloadLimitReached(ctx, e)
	case events.QuoteSent:
		return m.handleQuoteSent(ctx, e)
	case events.QuoteExpiringSoon:
		return m.handleQuoteExpiringSoon(ctx, e)
	case events.RecipientSuppressed:
		return m.handleRecipientSuppressed(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadQualified(ctx context.Context, e events.LeadQualified) error {
	subject := "Qualified lead: " + e.Email
	if e.CompanyName != "" {
		subject += " (" + e.CompanyName + ")"
	}

	text := fmt.Sprintf(
		"New qualified lead.\n\nEmail: %s\nCompany: %s\nIndustry: %s\nHeadcount: %d\nScore: %d\n",
		e.Email, orDash(e.CompanyName), orDash(e.Industry), e.Headcount, e.Score,
	)
	htmlBody := fmt.Sprintf(
		"<p>New qualified lead.</p><ul><li>Email: %s</li><li>Company: %s</li><li>Industry: %s</li><li>Headcount: %d</li><li>Score: %d</li></ul>",
		html.EscapeString(e.Email), html.EscapeString(orDash(e.CompanyName)),
		html.EscapeString(orDash(e.Industry)), e.Headcount, e.Score,
	)
	return m.salesAlert(ctx, subject, htmlBody, text)
}

func (m *Module) handleDownloadLimitReached(ctx context.Context, e events.DownloadLimitReached) error {
	text := fmt.Sprintf(
		"Hi,\n\nYou've downloaded %d resources from our library, and we'd love to help directly.\n\nPick a time with our compliance team: %s\n",
		e.Cap, m.schedulingURL,
	)
	htmlBody := fmt.Sprintf(
		`<p>Hi,</p><p>You've downloaded %d resources from our library, and we'd love to help directly.</p><p><a href="%s">Pick a time with our compliance team</a></p>`,
		e.Cap, html.EscapeString(m.schedulingURL),
	)
	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Recipient:    e.Email,
		EmailType:    outbox.TypeCustom,
		Subject:      "Let's find a time to talk",
		ScheduledFor: time.Now(),
		Payload:      outbox.CustomPayload{HTML: htmlBody, Text: text},
	})
	if err != nil {
		return fmt.Errorf("queueing download limit email: %w", err)
	}
	return nil
}

func (m *Module) handleQuoteSent(ctx context.Context, e events.QuoteSent) error {
	subject := fmt.Sprintf("Quote %s sent to %s", e.QuoteNumber, e.RecipientEmail)
	text := fmt.Sprintf(
		"Quote %s was sent to %s <%s>.\nValid until %s.\n",
		e.QuoteNumber, e.RecipientName, e.RecipientEmail, e.ExpiresAt.Format("January 2, 2006"),
	)
	htmlBody := fmt.Sprintf(
		"<p>Quote %s was sent to %s &lt;%s&gt;.</p><p>Valid until %s.</p>",
		html.EscapeString(e.QuoteNumber), html.EscapeString(e.RecipientName),
		html.EscapeString(e.RecipientEmail), e.ExpiresAt.Format("January 2, 2006"),
	)
	return m.salesAlert(ctx, subject, htmlBody, text)
}

func (m *Module) handleQuoteExpiringSoon(ctx context.Context, e events.QuoteExpiringSoon) error {
	subject := fmt.Sprintf("Quote %s expires in %d days", e.QuoteNumber, e.DaysRemaining)
	text := fmt.Sprintf(
		"Quote %s for %s <%s> expires on %s. The customer has been reminded; consider a direct follow-up.\n",
		e.QuoteNumber, e.RecipientName, e.RecipientEmail, e.ExpiresAt.Format("January 2, 2006"),
	)
	htmlBody := fmt.Sprintf(
		"<p>Quote %s for %s &lt;%s&gt; expires on %s.</p><p>The customer has been reminded; consider a direct follow-up.</p>",
		html.EscapeString(e.QuoteNumber), html.EscapeString(e.RecipientName),
		html.EscapeString(e.RecipientEmail), e.ExpiresAt.Format("January 2, 2006"),
	)
	return m.salesAlert(ctx, subject, htmlBody, text)
}

func (m *Module) handleRecipientSuppressed(ctx context.Context, e events.RecipientSuppressed) error {
	cancelled, err := m.outbox.CancelPendingFor(ctx, e.Recipient)
	if err != nil {
		return fmt.Errorf("cancelling pending emails: %w", err)
	}
	if cancelled > 0 {
		m.log.Info("cancelled pending emails for suppressed recipient",
			"recipient", e.Recipient, "reason", e.Reason, "count", cancelled)
	}
	return nil
}

func (m *Module) salesAlert(ctx context.Context, subject, htmlBody, text string) error {
	if m.salesEmail == "" {
		return nil
	}
	_, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Recipient:    m.salesEmail,
		EmailType:    outbox.TypeCustom,
		Subject:      subject,
		ScheduledFor: time.Now(),
		Payload:      outbox.CustomPayload{HTML: htmlBody, Text: text},
	})
	if err != nil {
		return fmt.Errorf("queueing sales alert: %w", err)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Compile-time check that Module implements Handler
var _ events.Handler = (*Module)(nil)
