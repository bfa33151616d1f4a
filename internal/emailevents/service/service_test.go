package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"funnel_backend/internal/emailevents/repository"
	"funnel_backend/internal/emailevents/transport"
	"funnel_backend/platform/events"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"
)

type fakeStore struct {
	mu   sync.Mutex
	byID map[string]repository.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]repository.Event{}}
}

func (s *fakeStore) Insert(ctx context.Context, e repository.Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.byID[e.ProviderEventID]; seen {
		return false, nil
	}
	s.byID[e.ProviderEventID] = e
	return true, nil
}

func (s *fakeStore) ListByRecipient(ctx context.Context, email string) ([]repository.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []repository.Event
	for _, e := range s.byID {
		if e.Recipient == email {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestService(store Store) *Service {
	log := logger.New("development")
	return New(store, events.NewInMemoryBus(log), validator.New(), log)
}

func TestIngestBatchCounts(t *testing.T) {
	svc := newTestService(newFakeStore())

	batch := []transport.WebhookEvent{
		{Email: "a@corp.com", Event: "delivered", ID: "1", Timestamp: 1700000000},
		{Email: "a@corp.com", Event: "opened", ID: "2", Timestamp: 1700000100},
		{Email: "not-an-email", Event: "delivered", ID: "3", Timestamp: 1700000200},
		{Email: "b@corp.com", Event: "teleported", ID: "4", Timestamp: 1700000300},
		{Email: "b@corp.com", Event: "delivered", ID: "5", Timestamp: 0},
	}

	result := svc.IngestBatch(context.Background(), batch)
	if result.Processed != 2 {
		t.Fatalf("expected 2 processed, got %d", result.Processed)
	}
	if result.Failed != 3 {
		t.Fatalf("expected 3 failed, got %d", result.Failed)
	}
}

func TestIngestBatchIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	batch := []transport.WebhookEvent{
		{Email: "a@corp.com", Event: "delivered", ID: "evt-1", Timestamp: 1700000000},
		{Email: "a@corp.com", Event: "hard_bounce", ID: "evt-2", Timestamp: 1700000100, Reason: "mailbox full"},
	}

	first := svc.IngestBatch(ctx, batch)
	if first.Processed != 2 || first.Failed != 0 {
		t.Fatalf("first pass: expected 2/0, got %d/%d", first.Processed, first.Failed)
	}
	healthBefore, err := svc.RecipientHealth(ctx, "a@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replay must not fail the batch and must not change the aggregate.
	second := svc.IngestBatch(ctx, batch)
	if second.Failed != 0 {
		t.Fatalf("replay must not fail items, got %d failed", second.Failed)
	}

	healthAfter, err := svc.RecipientHealth(ctx, "a@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(healthAfter.Events) != len(healthBefore.Events) {
		t.Fatalf("replay changed event count: %d -> %d", len(healthBefore.Events), len(healthAfter.Events))
	}
	if healthAfter.Counts[KindBounced] != 1 {
		t.Fatalf("expected 1 bounce after replay, got %d", healthAfter.Counts[KindBounced])
	}
}

func TestRecipientHealthSeverityOrdering(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	// Array order is deliberately scrambled: the bounce arrives first but
	// occurred between the delivery and the open.
	svc.IngestBatch(ctx, []transport.WebhookEvent{
		{Email: "c@corp.com", Event: "hard_bounce", ID: "b1", Timestamp: 1700000100},
		{Email: "c@corp.com", Event: "opened", ID: "o1", Timestamp: 1700000200},
		{Email: "c@corp.com", Event: "delivered", ID: "d1", Timestamp: 1700000000},
	})

	health, err := svc.RecipientHealth(ctx, "c@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != KindBounced {
		t.Fatalf("expected bounced status, got %s", health.Status)
	}
	if !health.Suppressed {
		t.Fatal("bounce must suppress the recipient")
	}
	wantLast := time.Unix(1700000200, 0).UTC()
	if health.LastEventAt == nil || !health.LastEventAt.Equal(wantLast) {
		t.Fatalf("expected last event at %v, got %v", wantLast, health.LastEventAt)
	}
}

func TestRecipientHealthEngagementOnly(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	svc.IngestBatch(ctx, []transport.WebhookEvent{
		{Email: "d@corp.com", Event: "delivered", ID: "d2", Timestamp: 1700000000},
		{Email: "d@corp.com", Event: "opened", ID: "o2", Timestamp: 1700000100},
		{Email: "d@corp.com", Event: "click", ID: "c2", Timestamp: 1700000200, Link: "https://app.test/quotes/abc"},
	})

	health, err := svc.RecipientHealth(ctx, "d@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != KindClicked {
		t.Fatalf("expected clicked status, got %s", health.Status)
	}
	if health.Suppressed {
		t.Fatal("engagement events must not suppress the recipient")
	}
}

func TestRecipientHealthUnsubscribeOutranksSpam(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	svc.IngestBatch(ctx, []transport.WebhookEvent{
		{Email: "e@corp.com", Event: "spam", ID: "s1", Timestamp: 1700000200},
		{Email: "e@corp.com", Event: "unsubscribed", ID: "u1", Timestamp: 1700000100},
	})

	health, err := svc.RecipientHealth(ctx, "e@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != KindUnsubscribed {
		t.Fatalf("expected unsubscribed status, got %s", health.Status)
	}
}

func TestIngestNormalizesRecipient(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	svc.IngestBatch(ctx, []transport.WebhookEvent{
		{Email: "  Mixed@Corp.COM ", Event: "delivered", ID: "n1", Timestamp: 1700000000},
	})

	health, err := svc.RecipientHealth(ctx, "mixed@corp.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(health.Events) != 1 {
		t.Fatalf("expected 1 event under the normalized address, got %d", len(health.Events))
	}
}
