// Package repository persists the append-only email engagement event log.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one stored engagement event. The log is append-only; health is
// always derived by scanning, never stored as a mutable field.
type Event struct {
	ID                uuid.UUID `db:"id"`
	ProviderEventID   string    `db:"provider_event_id"`
	ProviderMessageID *string   `db:"provider_message_id"`
	Recipient         string    `db:"recipient"`
	EventType         string    `db:"event_type"`
	Reason            *string   `db:"reason"`
	URL               *string   `db:"url"`
	OccurredAt        time.Time `db:"occurred_at"`
	ReceivedAt        time.Time `db:"received_at"`
}

// Repository provides database operations for email events.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends an event. Replays of a previously seen provider event id
// are silently dropped; the return value reports whether the row was new.
func (r *Repository) Insert(ctx context.Context, e Event) (bool, error) {
	query := `
		INSERT INTO email_events (
			id, provider_event_id, provider_message_id, recipient,
			event_type, reason, url, occurred_at, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider_event_id) DO NOTHING`

	result, err := r.pool.Exec(ctx, query,
		e.ID, e.ProviderEventID, e.ProviderMessageID, e.Recipient,
		e.EventType, e.Reason, e.URL, e.OccurredAt, e.ReceivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert email event: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListByRecipient returns all events for a recipient ordered by when they
// occurred, oldest first. Occurrence timestamps are authoritative for any
// latest-status derivation; insertion order is not.
func (r *Repository) ListByRecipient(ctx context.Context, email string) ([]Event, error) {
	query := `
		SELECT id, provider_event_id, provider_message_id, recipient,
			event_type, reason, url, occurred_at, received_at
		FROM email_events
		WHERE recipient = $1
		ORDER BY occurred_at ASC, received_at ASC`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list email events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.ProviderEventID, &e.ProviderMessageID, &e.Recipient,
			&e.EventType, &e.Reason, &e.URL, &e.OccurredAt, &e.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan email event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read email events: %w", err)
	}
	return events, nil
}
