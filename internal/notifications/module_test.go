package notifications

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"funnel_backend/internal/email/outbox"
	"funnel_backend/internal/events"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeOutbox struct {
	mu        sync.Mutex
	inserted  []outbox.InsertParams
	cancelled []string
}

func (f *fakeOutbox) Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, p)
	return uuid.New(), nil
}

func (f *fakeOutbox) CancelPendingFor(ctx context.Context, recipient string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, recipient)
	return 2, nil
}

func (f *fakeOutbox) snapshot() []outbox.InsertParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]outbox.InsertParams, len(f.inserted))
	copy(out, f.inserted)
	return out
}

type testConfig struct{ salesEmail string }

func (c testConfig) GetSalesNotifyEmail() string { return c.salesEmail }
func (c testConfig) GetSchedulingURL() string    { return "https://calendly.test/intro" }

func newTestModule(salesEmail string) (*Module, *fakeOutbox) {
	ob := &fakeOutbox{}
	m := NewModule(ob, testConfig{salesEmail: salesEmail}, logger.New("development"))
	return m, ob
}

func TestLeadQualifiedQueuesSalesAlert(t *testing.T) {
	m, ob := newTestModule("sales@corp.test")

	err := m.Handle(context.Background(), events.LeadQualified{
		BaseEvent:   events.NewBaseEvent(),
		Email:       "jane@boeing.com",
		CompanyName: "Boeing",
		Score:       115,
		Industry:    "Aerospace",
		Headcount:   5000,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	inserted := ob.snapshot()
	if len(inserted) != 1 {
		t.Fatalf("inserted = %d emails, want 1", len(inserted))
	}
	got := inserted[0]
	if got.Recipient != "sales@corp.test" {
		t.Errorf("recipient = %q, want sales@corp.test", got.Recipient)
	}
	if got.EmailType != outbox.TypeCustom {
		t.Errorf("email type = %q, want %q", got.EmailType, outbox.TypeCustom)
	}
	if !strings.Contains(got.Subject, "jane@boeing.com") {
		t.Errorf("subject %q does not name the lead", got.Subject)
	}
	payload, ok := got.Payload.(outbox.CustomPayload)
	if !ok {
		t.Fatalf("payload type = %T, want outbox.CustomPayload", got.Payload)
	}
	if !strings.Contains(payload.Text, "Score: 115") {
		t.Errorf("text body %q missing the score", payload.Text)
	}
}

func TestSalesAlertsSkippedWithoutAddress(t *testing.T) {
	m, ob := newTestModule("")

	if err := m.Handle(context.Background(), events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		Email:     "jane@boeing.com",
		Score:     80,
	}); err != nil {
		t.Fatalf("Handle(LeadQualified) error = %v", err)
	}
	if err := m.Handle(context.Background(), events.QuoteSent{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        uuid.New(),
		QuoteNumber:    "Q-2026-0001",
		RecipientEmail: "buyer@corp.test",
	}); err != nil {
		t.Fatalf("Handle(QuoteSent) error = %v", err)
	}

	if got := len(ob.snapshot()); got != 0 {
		t.Fatalf("inserted = %d emails, want 0 with no sales address", got)
	}
}

func TestDownloadLimitReachedEmailsVisitor(t *testing.T) {
	m, ob := newTestModule("")

	err := m.Handle(context.Background(), events.DownloadLimitReached{
		BaseEvent:    events.NewBaseEvent(),
		Email:        "visitor@corp.test",
		DocumentSlug: "capa-whitepaper",
		Cap:          3,
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	inserted := ob.snapshot()
	if len(inserted) != 1 {
		t.Fatalf("inserted = %d emails, want 1", len(inserted))
	}
	got := inserted[0]
	if got.Recipient != "visitor@corp.test" {
		t.Errorf("recipient = %q, want the visitor", got.Recipient)
	}
	payload, ok := got.Payload.(outbox.CustomPayload)
	if !ok {
		t.Fatalf("payload type = %T, want outbox.CustomPayload", got.Payload)
	}
	if !strings.Contains(payload.Text, "https://calendly.test/intro") {
		t.Errorf("text body %q missing the scheduling link", payload.Text)
	}
}

func TestRecipientSuppressedCancelsPendingMail(t *testing.T) {
	m, ob := newTestModule("sales@corp.test")

	err := m.Handle(context.Background(), events.RecipientSuppressed{
		BaseEvent: events.NewBaseEvent(),
		Recipient: "bounced@corp.test",
		Reason:    "hard bounce",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()
	if len(ob.cancelled) != 1 || ob.cancelled[0] != "bounced@corp.test" {
		t.Fatalf("cancelled = %v, want [bounced@corp.test]", ob.cancelled)
	}
	if len(ob.inserted) != 0 {
		t.Fatalf("inserted = %d emails, want 0 for a suppression", len(ob.inserted))
	}
}

func TestRegisteredHandlersReceivePublishedEvents(t *testing.T) {
	m, ob := newTestModule("sales@corp.test")

	bus := events.NewInMemoryBus(logger.New("development"))
	m.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), events.QuoteSent{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        uuid.New(),
		QuoteNumber:    "Q-2026-0042",
		RecipientEmail: "buyer@corp.test",
		RecipientName:  "Dana Buyer",
		ExpiresAt:      time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("PublishSync() error = %v", err)
	}

	inserted := ob.snapshot()
	if len(inserted) != 1 {
		t.Fatalf("inserted = %d emails, want 1 after publish", len(inserted))
	}
	if !strings.Contains(inserted[0].Subject, "Q-2026-0042") {
		t.Errorf("subject %q does not name the quote", inserted[0].Subject)
	}
}
