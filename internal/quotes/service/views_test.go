package service

import (
	"testing"
	"time"

	"funnel_backend/internal/quotes/expiry"
	"funnel_backend/internal/quotes/repository"

	"github.com/google/uuid"
)

type testConfig struct{}

func (testConfig) GetAppBaseURL() string     { return "https://compliance.test" }
func (testConfig) GetQuoteValidityDays() int { return 30 }
func (testConfig) GetQuoteReminderDays() int { return 7 }

func TestViewsBuiltFromListedRows(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	s := &Service{cfg: testConfig{}, now: func() time.Time { return now }}

	quotes := []repository.Quote{
		{
			ID:          uuid.New(),
			QuoteNumber: "Q-2026-0001",
			PublicToken: "tok-active",
			LineItems:   []byte(`[{"label":"Platform licence","quantity":1,"unitPriceCents":1200000,"totalCents":1200000}]`),
			ExpiresAt:   now.Add(20 * 24 * time.Hour),
		},
		{
			ID:          uuid.New(),
			QuoteNumber: "Q-2026-0002",
			PublicToken: "tok-expired",
			ExpiresAt:   now.Add(-24 * time.Hour),
		},
	}

	views, err := s.views(quotes)
	if err != nil {
		t.Fatalf("views() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views() returned %d items, want 2", len(views))
	}

	first := views[0]
	if first.Quote.QuoteNumber != "Q-2026-0001" {
		t.Errorf("first view quote = %q, want Q-2026-0001", first.Quote.QuoteNumber)
	}
	if len(first.LineItems) != 1 || first.LineItems[0].Label != "Platform licence" {
		t.Errorf("first view line items = %+v, want the decoded licence row", first.LineItems)
	}
	if first.ExpiryStatus.State != expiry.StateActive {
		t.Errorf("first view expiry state = %q, want active", first.ExpiryStatus.State)
	}
	if first.PublicURL != "https://compliance.test/quotes/tok-active" {
		t.Errorf("first view public URL = %q", first.PublicURL)
	}

	second := views[1]
	if second.ExpiryStatus.State != expiry.StateExpired {
		t.Errorf("second view expiry state = %q, want expired", second.ExpiryStatus.State)
	}
	if len(second.LineItems) != 0 {
		t.Errorf("second view line items = %+v, want none", second.LineItems)
	}
}

func TestViewsRejectMalformedLineItems(t *testing.T) {
	s := &Service{cfg: testConfig{}, now: time.Now}

	_, err := s.views([]repository.Quote{{
		QuoteNumber: "Q-2026-0003",
		LineItems:   []byte(`{not json`),
	}})
	if err == nil {
		t.Fatal("views() expected error for malformed line items")
	}
}
