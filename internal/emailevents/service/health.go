package service

import (
	"time"

	"funnel_backend/internal/emailevents/repository"
)

// Canonical event kinds. Provider payloads use a wider vocabulary that is
// normalized into these before storage.
const (
	KindDelivered    = "delivered"
	KindOpened       = "opened"
	KindClicked      = "clicked"
	KindBounced      = "bounced"
	KindSpam         = "spam"
	KindUnsubscribed = "unsubscribed"
	KindSuppressed   = "suppressed"
)

// providerKinds maps the provider's event names onto canonical kinds.
var providerKinds = map[string]string{
	"delivered":     KindDelivered,
	"opened":        KindOpened,
	"unique_opened": KindOpened,
	"open":          KindOpened,
	"click":         KindClicked,
	"clicked":       KindClicked,
	"hard_bounce":   KindBounced,
	"soft_bounce":   KindBounced,
	"bounce":        KindBounced,
	"spam":          KindSpam,
	"complaint":     KindSpam,
	"unsubscribed":  KindUnsubscribed,
	"unsubscribe":   KindUnsubscribed,
	"blocked":       KindSuppressed,
	"suppressed":    KindSuppressed,
	"invalid_email": KindSuppressed,
}

// severity ranks kinds for the health status derivation. Suppression and
// unsubscribes outrank spam complaints, which outrank bounces, which
// outrank any engagement signal.
var severity = map[string]int{
	KindSuppressed:   6,
	KindUnsubscribed: 6,
	KindSpam:         5,
	KindBounced:      4,
	KindClicked:      3,
	KindOpened:       2,
	KindDelivered:    1,
}

// suppressing reports whether a kind should stop further mail to the
// recipient.
func suppressing(kind string) bool {
	return severity[kind] >= severity[KindBounced]
}

// Health is the derived per-recipient aggregate over the event log.
type Health struct {
	Email       string
	Status      string
	Suppressed  bool
	LastEventAt *time.Time
	Counts      map[string]int
	Events      []repository.Event
}

// deriveHealth scans a recipient's event log. The status is the kind with
// the highest severity present; within equal severity the most recent
// occurrence wins. Timestamps decide recency, not log position.
func deriveHealth(email string, events []repository.Event) Health {
	h := Health{
		Email:  email,
		Status: "unknown",
		Counts: map[string]int{},
		Events: events,
	}

	var statusAt time.Time
	statusSeverity := 0
	for i := range events {
		e := &events[i]
		h.Counts[e.EventType]++

		if h.LastEventAt == nil || e.OccurredAt.After(*h.LastEventAt) {
			t := e.OccurredAt
			h.LastEventAt = &t
		}

		sev := severity[e.EventType]
		if sev > statusSeverity || (sev == statusSeverity && e.OccurredAt.After(statusAt)) {
			statusSeverity = sev
			statusAt = e.OccurredAt
			h.Status = e.EventType
		}

		if suppressing(e.EventType) {
			h.Suppressed = true
		}
	}
	return h
}
