// Package transport defines the request and response shapes for the
// quotes API.
package transport

import (
	"time"

	"funnel_backend/internal/quotes/service"

	"github.com/google/uuid"
)

// CreateQuoteRequest defines the admin quote creation payload.
type CreateQuoteRequest struct {
	CustomerName  string   `json:"customerName" validate:"required,max=200"`
	CustomerEmail string   `json:"customerEmail" validate:"required,email"`
	Company       string   `json:"company" validate:"max=200"`
	Tier          string   `json:"tier" validate:"required"`
	Seats         int      `json:"seats" validate:"required,min=1,max=10000"`
	TermYears     int      `json:"termYears" validate:"required,min=1,max=10"`
	Addons        []string `json:"addons" validate:"max=10"`
}

// ExtendQuoteRequest defines the expiry extension payload. Zero days
// means the configured validity window.
type ExtendQuoteRequest struct {
	Days int `json:"days" validate:"min=0,max=365"`
}

// LineItemResponse is one row of the itemized breakdown.
type LineItemResponse struct {
	Label          string `json:"label"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// QuoteResponse is the full admin view of a quote.
type QuoteResponse struct {
	ID             uuid.UUID          `json:"id"`
	QuoteNumber    string             `json:"quoteNumber"`
	CustomerName   string             `json:"customerName"`
	CustomerEmail  string             `json:"customerEmail"`
	Company        string             `json:"company,omitempty"`
	Tier           string             `json:"tier"`
	TierName       string             `json:"tierName"`
	Currency       string             `json:"currency"`
	LineItems      []LineItemResponse `json:"lineItems"`
	Features       []string           `json:"features"`
	Seats          int                `json:"seats"`
	AnnualCents    int64              `json:"annualCents"`
	TermYears      int                `json:"termYears"`
	TotalCents     int64              `json:"totalCents"`
	Status         string             `json:"status"`
	ExpiresAt      time.Time          `json:"expiresAt"`
	ExpiryState    string             `json:"expiryState"`
	ExpiryMessage  string             `json:"expiryMessage"`
	DaysRemaining  int                `json:"daysRemaining"`
	PublicURL      string             `json:"publicUrl"`
	ReminderSentAt *time.Time         `json:"reminderSentAt,omitempty"`
	SentAt         *time.Time         `json:"sentAt,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// PublicQuoteResponse is the customer-facing quote view. It omits admin
// fields and internal identifiers.
type PublicQuoteResponse struct {
	QuoteNumber   string             `json:"quoteNumber"`
	CustomerName  string             `json:"customerName"`
	Company       string             `json:"company,omitempty"`
	TierName      string             `json:"tierName"`
	Currency      string             `json:"currency"`
	LineItems     []LineItemResponse `json:"lineItems"`
	Features      []string           `json:"features"`
	AnnualCents   int64              `json:"annualCents"`
	TermYears     int                `json:"termYears"`
	TotalCents    int64              `json:"totalCents"`
	ExpiresAt     time.Time          `json:"expiresAt"`
	ExpiryState   string             `json:"expiryState"`
	ExpiryMessage string             `json:"expiryMessage"`
	DaysRemaining int                `json:"daysRemaining"`
}

// ListQuotesResponse is one admin page of quotes.
type ListQuotesResponse struct {
	Items      []QuoteResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// SweepResponse reports the outcome of a manual expiry sweep.
type SweepResponse struct {
	RemindersQueued int `json:"remindersQueued"`
}

// ToLineItems converts service line items to their response shape.
func ToLineItems(items []service.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, LineItemResponse{
			Label:          item.Label,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	return out
}
