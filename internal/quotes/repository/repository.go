package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"funnel_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Quote status values. A quote starts as draft and becomes sent once the
// proposal email has been queued. Expiry is derived from expires_at, not
// stored as a status.
const (
	StatusDraft = "draft"
	StatusSent  = "sent"
)

// Quote is the database model for a quote.
type Quote struct {
	ID             uuid.UUID  `db:"id"`
	QuoteNumber    string     `db:"quote_number"`
	PublicToken    string     `db:"public_token"`
	CustomerName   string     `db:"customer_name"`
	CustomerEmail  string     `db:"customer_email"`
	Company        *string    `db:"company"`
	Tier           string     `db:"tier"`
	TierName       string     `db:"tier_name"`
	Currency       string     `db:"currency"`
	LineItems      []byte     `db:"line_items"` // JSON array
	Features       []string   `db:"features"`
	Seats          int        `db:"seats"`
	AnnualCents    int64      `db:"annual_cents"`
	TermYears      int        `db:"term_years"`
	TotalCents     int64      `db:"total_cents"`
	Status         string     `db:"status"`
	PDFFileKey     *string    `db:"pdf_file_key"`
	ExpiresAt      time.Time  `db:"expires_at"`
	ReminderSentAt *time.Time `db:"reminder_sent_at"`
	SentAt         *time.Time `db:"sent_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// ListParams narrows and pages the admin quote listing.
type ListParams struct {
	Status   *string
	Search   string
	Page     int
	PageSize int
}

// ListResult is one page of quotes plus paging metadata.
type ListResult struct {
	Items      []Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `id, quote_number, public_token, customer_name, customer_email, company,
		tier, tier_name, currency, line_items, features, seats,
		annual_cents, term_years, total_cents, status, pdf_file_key,
		expires_at, reminder_sent_at, sent_at, created_at, updated_at`

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextQuoteNumber atomically generates the next quote number, formatted as
// MC-<year>-<counter>.
func (r *Repository) NextQuoteNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	var nextNum int
	query := `
		INSERT INTO quote_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = quote_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}
	return fmt.Sprintf("MC-%d-%04d", year, nextNum), nil
}

// Create inserts a new quote.
func (r *Repository) Create(ctx context.Context, q *Quote) error {
	query := `
		INSERT INTO quotes (
			id, quote_number, public_token, customer_name, customer_email, company,
			tier, tier_name, currency, line_items, features, seats,
			annual_cents, term_years, total_cents, status,
			expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	if _, err := r.pool.Exec(ctx, query,
		q.ID, q.QuoteNumber, q.PublicToken, q.CustomerName, q.CustomerEmail, q.Company,
		q.Tier, q.TierName, q.Currency, q.LineItems, q.Features, q.Seats,
		q.AnnualCents, q.TermYears, q.TotalCents, q.Status,
		q.ExpiresAt, q.CreatedAt, q.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// GetByID retrieves a quote by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByPublicToken retrieves a quote by its shareable token.
func (r *Repository) GetByPublicToken(ctx context.Context, token string) (*Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE public_token = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, token))
}

// List returns one page of quotes, newest first.
func (r *Repository) List(ctx context.Context, p ListParams) (*ListResult, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}

	where := ` WHERE 1=1`
	args := []any{}
	argN := 1
	if p.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, *p.Status)
		argN++
	}
	if p.Search != "" {
		where += fmt.Sprintf(" AND (customer_name ILIKE $%d OR customer_email ILIKE $%d OR quote_number ILIKE $%d)", argN, argN, argN)
		args = append(args, "%"+p.Search+"%")
		argN++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM quotes`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	query := `SELECT ` + quoteColumns + ` FROM quotes` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, p.PageSize, (p.Page-1)*p.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	items := []Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quotes: %w", err)
	}

	totalPages := (total + p.PageSize - 1) / p.PageSize
	return &ListResult{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize, TotalPages: totalPages}, nil
}

// MarkSent records that the proposal email was queued and stores the
// rendered PDF's storage key.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, pdfFileKey string) error {
	query := `
		UPDATE quotes SET status = $2, pdf_file_key = $3, sent_at = now(), updated_at = now()
		WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, StatusSent, pdfFileKey)
	if err != nil {
		return fmt.Errorf("failed to mark quote sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// UpdateExpiresAt moves the quote deadline and clears any reminder marker
// so the new window gets its own reminder.
func (r *Repository) UpdateExpiresAt(ctx context.Context, id uuid.UUID, expiresAt time.Time) error {
	query := `
		UPDATE quotes SET expires_at = $2, reminder_sent_at = NULL, updated_at = now()
		WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update quote expiry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return nil
}

// ListExpiringUnreminded returns sent quotes whose deadline falls within
// the next windowDays and that have not had a reminder yet.
func (r *Repository) ListExpiringUnreminded(ctx context.Context, now time.Time, windowDays int) ([]Quote, error) {
	query := `SELECT ` + quoteColumns + `
		FROM quotes
		WHERE status = $1
		  AND reminder_sent_at IS NULL
		  AND expires_at > $2
		  AND expires_at <= $3
		ORDER BY expires_at ASC`

	rows, err := r.pool.Query(ctx, query, StatusSent, now, now.Add(time.Duration(windowDays)*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring quotes: %w", err)
	}
	defer rows.Close()

	var items []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expiring quotes: %w", err)
	}
	return items, nil
}

// MarkReminderSent stamps the reminder marker. Returns false when another
// sweep already claimed the quote.
func (r *Repository) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE quotes SET reminder_sent_at = now(), updated_at = now()
		WHERE id = $1 AND reminder_sent_at IS NULL`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOne(row rowScanner) (*Quote, error) {
	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, err
	}
	return q, nil
}

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.PublicToken, &q.CustomerName, &q.CustomerEmail, &q.Company,
		&q.Tier, &q.TierName, &q.Currency, &q.LineItems, &q.Features, &q.Seats,
		&q.AnnualCents, &q.TermYears, &q.TotalCents, &q.Status, &q.PDFFileKey,
		&q.ExpiresAt, &q.ReminderSentAt, &q.SentAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}
	return &q, nil
}

// DecodeLineItems unmarshals the stored line item JSON into v.
func DecodeLineItems(q *Quote, v any) error {
	if len(q.LineItems) == 0 {
		return nil
	}
	if err := json.Unmarshal(q.LineItems, v); err != nil {
		return fmt.Errorf("failed to decode quote line items: %w", err)
	}
	return nil
}
