// Package repository persists gated documents and the per-email download ledger.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDocumentNotFound is returned when no document matches the given slug.
var ErrDocumentNotFound = errors.New("document not found")

// Document is a piece of marketing collateral, gated or public.
type Document struct {
	ID      uuid.UUID
	Slug    string
	Title   string
	FileKey string
	DocType string
	Gated   bool
}

// DownloadRecord is one successful gated download.
type DownloadRecord struct {
	ID             uuid.UUID
	Email          string
	Name           string
	Company        string
	Role           string
	DocumentSlug   string
	DocumentTitle  string
	DocumentType   string
	DownloadedAt   time.Time
	FollowUpSent   bool
	FollowUpSentAt *time.Time
}

// InsertParams carries the fields for a new download record.
type InsertParams struct {
	Email         string
	Name          string
	Company       string
	Role          string
	DocumentSlug  string
	DocumentTitle string
	DocumentType  string
}

// Repository provides download ledger persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new downloads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetDocumentBySlug looks up collateral by its public slug.
func (r *Repository) GetDocumentBySlug(ctx context.Context, slug string) (Document, error) {
	var doc Document
	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, title, file_key, doc_type, gated
		 FROM gated_documents
		 WHERE slug = $1`,
		slug,
	).Scan(&doc.ID, &doc.Slug, &doc.Title, &doc.FileKey, &doc.DocType, &doc.Gated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// CountByEmail returns the number of gated downloads recorded for an email.
func (r *Repository) CountByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM document_downloads WHERE email = $1`,
		email,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecordIfUnderCap atomically inserts a download record if the email has
// fewer than cap records. The check and the insert run in one transaction
// serialized per email with an advisory lock, so concurrent requests for
// the same address cannot race past the cap.
// Returns whether the record was inserted and the count after the call.
func (r *Repository) RecordIfUnderCap(ctx context.Context, p InsertParams, cap int) (bool, int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, p.Email); err != nil {
		return false, 0, err
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT count(*) FROM document_downloads WHERE email = $1`,
		p.Email,
	).Scan(&count); err != nil {
		return false, 0, err
	}

	if count >= cap {
		if err := tx.Commit(ctx); err != nil {
			return false, 0, err
		}
		return false, count, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO document_downloads
			(email, name, company, role, document_slug, document_title, document_type, downloaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		p.Email, p.Name, p.Company, p.Role, p.DocumentSlug, p.DocumentTitle, p.DocumentType,
	)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}
	return true, count + 1, nil
}

// MarkFollowUpSent flags a download record once its follow-up email is queued.
func (r *Repository) MarkFollowUpSent(ctx context.Context, email, documentSlug string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE document_downloads
		 SET follow_up_sent = true, follow_up_sent_at = now()
		 WHERE email = $1 AND document_slug = $2 AND follow_up_sent = false`,
		email, documentSlug,
	)
	return err
}
