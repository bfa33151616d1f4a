// Package outbox persists scheduled outbound email. Rows are claimed by the
// worker's dispatcher, so "send later" and retry state live entirely in the
// database.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"

	errRepoNotConfigured = "email outbox repository not configured"

	// retryBackoff is the delay before a failed send becomes due again.
	retryBackoff = 5 * time.Minute
)

// Email types dispatched by the worker.
const (
	TypeQuoteProposal    = "quote_proposal"
	TypeQuoteReminder    = "quote_reminder"
	TypeDownloadFollowUp = "download_followup"
	TypeCustom           = "custom"
)

type Record struct {
	ID           uuid.UUID
	Recipient    string
	EmailType    string
	Subject      string
	Payload      json.RawMessage
	ScheduledFor time.Time
	Status       Status
	RetryCount   int
	LastError    *string
	SentAt       *time.Time
}

type InsertParams struct {
	Recipient    string
	EmailType    string
	Subject      string
	Payload      any
	ScheduledFor time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, p InsertParams) (uuid.UUID, error) {
	if r == nil || r.pool == nil {
		return uuid.Nil, errors.New(errRepoNotConfigured)
	}
	if p.Recipient == "" {
		return uuid.Nil, fmt.Errorf("recipient is required")
	}
	if p.EmailType == "" {
		return uuid.Nil, fmt.Errorf("emailType is required")
	}
	if p.ScheduledFor.IsZero() {
		p.ScheduledFor = time.Now().UTC()
	}

	payloadBytes, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	var id uuid.UUID
	err = r.pool.QueryRow(ctx,
		`INSERT INTO scheduled_emails (recipient, email_type, subject, payload, scheduled_for, status)
		 VALUES ($1, $2, $3, $4, $5, 'pending')
		 RETURNING id`,
		p.Recipient, p.EmailType, p.Subject, payloadBytes, p.ScheduledFor,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	if r == nil || r.pool == nil {
		return Record{}, errors.New(errRepoNotConfigured)
	}

	var rec Record
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, recipient, email_type, subject, payload, scheduled_for, status, retry_count, last_error, sent_at
		 FROM scheduled_emails
		 WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Recipient, &rec.EmailType, &rec.Subject, &rec.Payload, &rec.ScheduledFor, &status, &rec.RetryCount, &rec.LastError, &rec.SentAt)
	if err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}

// ClaimDue atomically moves due pending rows to processing and returns them.
// SKIP LOCKED keeps concurrent dispatchers from claiming the same rows.
func (r *Repository) ClaimDue(ctx context.Context, limit int) ([]Record, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New(errRepoNotConfigured)
	}
	if limit < 1 {
		limit = 50
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `WITH cte AS (
		SELECT id
		FROM scheduled_emails
		WHERE status = 'pending' AND scheduled_for <= now()
		ORDER BY scheduled_for ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE scheduled_emails e
	SET status = 'processing', updated_at = now()
	FROM cte
	WHERE e.id = cte.id
	RETURNING e.id, e.recipient, e.email_type, e.subject, e.payload, e.scheduled_for, e.status, e.retry_count, e.last_error, e.sent_at`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.Recipient, &rec.EmailType, &rec.Subject, &rec.Payload, &rec.ScheduledFor, &status, &rec.RetryCount, &rec.LastError, &rec.SentAt); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		results = append(results, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// MarkSent records terminal success.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_emails
		 SET status = 'sent', sent_at = now(), updated_at = now()
		 WHERE id = $1`,
		id,
	)
	return err
}

// MarkPending returns a claimed row to pending without consuming a retry,
// recording why it was handed back.
func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_emails
		 SET status = 'pending', last_error = $2, updated_at = now()
		 WHERE id = $1`,
		id, lastError,
	)
	return err
}

// MarkAttemptFailed increments the retry counter. Under maxRetries the row
// goes back to pending with a backoff; at or past it the row fails terminally.
func (r *Repository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, lastError string, maxRetries int) error {
	if r == nil || r.pool == nil {
		return errors.New(errRepoNotConfigured)
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE scheduled_emails
		 SET retry_count = retry_count + 1,
		     last_error = $2,
		     status = CASE WHEN retry_count + 1 >= $3 THEN 'failed' ELSE 'pending' END,
		     scheduled_for = CASE WHEN retry_count + 1 >= $3 THEN scheduled_for ELSE now() + make_interval(secs => $4) END,
		     updated_at = now()
		 WHERE id = $1`,
		id, lastError, maxRetries, retryBackoff.Seconds(),
	)
	return err
}

// CancelPendingFor cancels every pending email queued for a recipient.
// Used when the recipient bounces, complains, or unsubscribes.
func (r *Repository) CancelPendingFor(ctx context.Context, recipient string) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New(errRepoNotConfigured)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_emails
		 SET status = 'cancelled', updated_at = now()
		 WHERE recipient = $1 AND status = 'pending'`,
		recipient,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ReleaseStuck returns rows stuck in processing (e.g. after a worker crash)
// to pending once they have been held longer than the given age.
func (r *Repository) ReleaseStuck(ctx context.Context, olderThan time.Duration) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New(errRepoNotConfigured)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_emails
		 SET status = 'pending', updated_at = now()
		 WHERE status = 'processing' AND updated_at < now() - make_interval(secs => $1)`,
		olderThan.Seconds(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
