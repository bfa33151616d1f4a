package expiry

import (
	"testing"
	"time"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestExpirationDate(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	got := ExpirationDate(created, 30)
	want := created.Add(30 * 24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	// Zero validity falls back to the default window.
	got = ExpirationDate(created, 0)
	want = created.Add(DefaultValidityDays * 24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("expected default window %v, got %v", want, got)
	}
}

func TestStatusAtBoundaries(t *testing.T) {
	cases := []struct {
		name      string
		expiresAt time.Time
		wantState State
		wantDays  int
	}{
		{"8 days remaining", now.Add(8 * 24 * time.Hour), StateActive, 8},
		{"7 days remaining", now.Add(7 * 24 * time.Hour), StateExpiringSoon, 7},
		{"3 days remaining", now.Add(3 * 24 * time.Hour), StateExpiringSoon, 3},
		{"0 days remaining", now.Add(12 * time.Hour), StateExpiringSoon, 0},
		{"-1 day remaining", now.Add(-24 * time.Hour), StateExpired, -1},
	}

	for _, tc := range cases {
		got := StatusAt(tc.expiresAt, now, 7)
		if got.State != tc.wantState {
			t.Fatalf("%s: expected state %s, got %s", tc.name, tc.wantState, got.State)
		}
		if got.DaysRemaining != tc.wantDays {
			t.Fatalf("%s: expected %d days remaining, got %d", tc.name, tc.wantDays, got.DaysRemaining)
		}
	}
}

func TestExtendFromUnexpiredQuoteAddsToRemainingTime(t *testing.T) {
	currentExpiry := now.Add(10 * 24 * time.Hour)

	got := Extend(currentExpiry, now, 30)
	want := currentExpiry.Add(30 * 24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtendFromExpiredQuoteStartsFreshWindow(t *testing.T) {
	currentExpiry := now.Add(-5 * 24 * time.Hour)

	got := Extend(currentExpiry, now, 30)
	want := now.Add(30 * 24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !got.After(now) {
		t.Fatalf("extension must never produce a past deadline, got %v", got)
	}
}
