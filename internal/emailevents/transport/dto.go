// Package transport defines the webhook payload and analytics response
// shapes for email engagement events.
package transport

import (
	"encoding/json"
	"strconv"
	"time"
)

// FlexID accepts a provider event id sent as either a JSON string or a
// JSON number and normalizes it to a string.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// WebhookEvent is one provider engagement event. The provider posts an
// array of these; items may arrive out of order and may repeat.
type WebhookEvent struct {
	Email     string `json:"email"`
	Event     string `json:"event"`
	ID        FlexID `json:"id"`
	MessageID string `json:"message-id"`
	Timestamp int64  `json:"ts"` // unix seconds
	Reason    string `json:"reason,omitempty"`
	Link      string `json:"link,omitempty"`
}

// OccurredAt converts the unix-seconds timestamp. Zero timestamps are
// invalid and rejected during ingestion.
func (e WebhookEvent) OccurredAt() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// ProviderEventID returns the dedup id, falling back to a composite of
// message id, event kind and timestamp when the provider omits the id.
func (e WebhookEvent) ProviderEventID() string {
	if e.ID != "" {
		return e.ID.String()
	}
	if e.MessageID == "" {
		return ""
	}
	return e.MessageID + ":" + e.Event + ":" + strconv.FormatInt(e.Timestamp, 10)
}

// IngestResponse reports the batch outcome.
type IngestResponse struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// EventResponse is one stored engagement event.
type EventResponse struct {
	EventType  string    `json:"eventType"`
	OccurredAt time.Time `json:"occurredAt"`
	Reason     string    `json:"reason,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// RecipientHealthResponse is the derived per-recipient health aggregate.
type RecipientHealthResponse struct {
	Email       string          `json:"email"`
	Status      string          `json:"status"`
	Suppressed  bool            `json:"suppressed"`
	LastEventAt *time.Time      `json:"lastEventAt,omitempty"`
	Counts      map[string]int  `json:"counts"`
	Events      []EventResponse `json:"events"`
}
