// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"funnel_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadQualified is published when a submitted lead scores at or above the
// qualification threshold.
type LeadQualified struct {
	BaseEvent
	Email       string `json:"email"`
	CompanyName string `json:"companyName,omitempty"`
	Score       int    `json:"score"`
	Industry    string `json:"industry,omitempty"`
	Headcount   int    `json:"headcount,omitempty"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// LeadDisqualified is published when a submitted lead scores below the
// qualification threshold.
type LeadDisqualified struct {
	BaseEvent
	Email string `json:"email"`
	Score int    `json:"score"`
}

func (e LeadDisqualified) EventName() string { return "leads.lead.disqualified" }

// =============================================================================
// Downloads Domain Events
// =============================================================================

// DocumentDownloaded is published when a gated document download is recorded.
type DocumentDownloaded struct {
	BaseEvent
	Email         string    `json:"email"`
	DocumentSlug  string    `json:"documentSlug"`
	DownloadCount int       `json:"downloadCount"`
	DownloadedAt  time.Time `json:"downloadedAt"`
}

func (e DocumentDownloaded) EventName() string { return "downloads.document.downloaded" }

// DownloadLimitReached is published when a visitor hits the lifetime download cap.
type DownloadLimitReached struct {
	BaseEvent
	Email        string `json:"email"`
	DocumentSlug string `json:"documentSlug"`
	Cap          int    `json:"cap"`
}

func (e DownloadLimitReached) EventName() string { return "downloads.limit.reached" }

// =============================================================================
// Quotes Domain Events
// =============================================================================

// QuoteCreated is published when a quote is created.
type QuoteCreated struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	QuoteNumber    string    `json:"quoteNumber"`
	RecipientEmail string    `json:"recipientEmail"`
	Tier           string    `json:"tier"`
	TotalCents     int64     `json:"totalCents"`
}

func (e QuoteCreated) EventName() string { return "quotes.quote.created" }

// QuoteSent is published when a quote proposal is dispatched to the recipient.
type QuoteSent struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	QuoteNumber    string    `json:"quoteNumber"`
	RecipientEmail string    `json:"recipientEmail"`
	RecipientName  string    `json:"recipientName"`
	PublicToken    string    `json:"publicToken"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func (e QuoteSent) EventName() string { return "quotes.quote.sent" }

// QuoteExtended is published when a quote's expiration is pushed out.
type QuoteExtended struct {
	BaseEvent
	QuoteID      uuid.UUID `json:"quoteId"`
	QuoteNumber  string    `json:"quoteNumber"`
	OldExpiresAt time.Time `json:"oldExpiresAt"`
	NewExpiresAt time.Time `json:"newExpiresAt"`
}

func (e QuoteExtended) EventName() string { return "quotes.quote.extended" }

// QuoteExpiringSoon is published by the expiry sweep for quotes inside the
// reminder window that have not been reminded yet.
type QuoteExpiringSoon struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	QuoteNumber    string    `json:"quoteNumber"`
	RecipientEmail string    `json:"recipientEmail"`
	RecipientName  string    `json:"recipientName"`
	ExpiresAt      time.Time `json:"expiresAt"`
	DaysRemaining  int       `json:"daysRemaining"`
}

func (e QuoteExpiringSoon) EventName() string { return "quotes.quote.expiring_soon" }

// =============================================================================
// Email Events Domain Events
// =============================================================================

// EmailEngagementRecorded is published when a provider webhook event is
// persisted for a recipient.
type EmailEngagementRecorded struct {
	BaseEvent
	ProviderEventID string    `json:"providerEventId"`
	Recipient       string    `json:"recipient"`
	EventType       string    `json:"eventType"`
	EventAt         time.Time `json:"eventAt"`
}

func (e EmailEngagementRecorded) EventName() string { return "emailevents.engagement.recorded" }

// RecipientSuppressed is published when a recipient hard-bounces, complains,
// or unsubscribes. Downstream senders must stop mailing the address.
type RecipientSuppressed struct {
	BaseEvent
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

func (e RecipientSuppressed) EventName() string { return "emailevents.recipient.suppressed" }
