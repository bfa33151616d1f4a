// Package service implements the gated download ledger policy.
package service

import (
	"context"
	"strings"
	"time"

	"funnel_backend/internal/adapters/storage"
	"funnel_backend/internal/downloads/repository"
	"funnel_backend/internal/events"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"
)

// Ledger is the persistence contract for the download cap. The cap check and
// the record insert must be a single atomic operation.
type Ledger interface {
	GetDocumentBySlug(ctx context.Context, slug string) (repository.Document, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	RecordIfUnderCap(ctx context.Context, p repository.InsertParams, cap int) (bool, int, error)
	MarkFollowUpSent(ctx context.Context, email, documentSlug string) error
}

// URLSigner issues time-limited download URLs for stored collateral.
type URLSigner interface {
	GenerateDownloadURL(ctx context.Context, bucket, fileKey string, ttl time.Duration) (*storage.PresignedURL, error)
}

// FollowUpScheduler queues the nurture email sent after a gated download.
type FollowUpScheduler interface {
	ScheduleDownloadFollowUp(ctx context.Context, recipient, name, documentTitle string, sendAt time.Time) error
}

// Request is a gated download attempt.
type Request struct {
	Email        string
	Name         string
	Company      string
	Role         string
	DocumentSlug string
}

// Result is the outcome of a download attempt. LimitReached is a first-class
// outcome, not an error: the caller renders the scheduling path instead.
type Result struct {
	Granted       bool
	LimitReached  bool
	URL           string
	FileKey       string
	ExpiresIn     int
	Remaining     int
	SchedulingURL string
	DocumentTitle string
}

// Service enforces the lifetime download cap and issues signed URLs.
type Service struct {
	ledger        Ledger
	signer        URLSigner
	followUp      FollowUpScheduler
	bus           events.Bus
	log           *logger.Logger
	bucket        string
	cap           int
	urlTTL        time.Duration
	followUpDelay time.Duration
	schedulingURL string
}

// New creates the downloads service.
func New(ledger Ledger, signer URLSigner, bucket string, cfg config.DownloadsConfig, log *logger.Logger) *Service {
	return &Service{
		ledger:        ledger,
		signer:        signer,
		log:           log,
		bucket:        bucket,
		cap:           cfg.GetDownloadCap(),
		urlTTL:        cfg.GetDownloadURLTTL(),
		followUpDelay: cfg.GetFollowUpDelay(),
		schedulingURL: cfg.GetSchedulingURL(),
	}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) { s.bus = bus }

// SetFollowUpScheduler wires the nurture email scheduler.
func (s *Service) SetFollowUpScheduler(f FollowUpScheduler) { s.followUp = f }

// RequestDownload runs the gate: public documents are issued directly,
// gated documents consume one of the email's lifetime downloads. The 4th
// attempt for a capped email gets the scheduling path, never a URL.
func (s *Service) RequestDownload(ctx context.Context, req Request) (Result, error) {
	email := normalizeEmail(req.Email)

	doc, err := s.ledger.GetDocumentBySlug(ctx, req.DocumentSlug)
	if err != nil {
		if err == repository.ErrDocumentNotFound {
			return Result{}, apperr.NotFound("document not found")
		}
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to look up document", err)
	}

	// Public collateral is exempt from the ledger entirely.
	if !doc.Gated {
		signed, err := s.signer.GenerateDownloadURL(ctx, s.bucket, doc.FileKey, s.urlTTL)
		if err != nil {
			return Result{}, apperr.Wrap(apperr.KindInternal, "failed to sign download URL", err)
		}
		return Result{
			Granted:       true,
			URL:           signed.URL,
			FileKey:       signed.FileKey,
			ExpiresIn:     int(s.urlTTL.Seconds()),
			Remaining:     -1,
			DocumentTitle: doc.Title,
		}, nil
	}

	inserted, count, err := s.ledger.RecordIfUnderCap(ctx, repository.InsertParams{
		Email:         email,
		Name:          req.Name,
		Company:       req.Company,
		Role:          req.Role,
		DocumentSlug:  doc.Slug,
		DocumentTitle: doc.Title,
		DocumentType:  doc.DocType,
	}, s.cap)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to record download", err)
	}

	if !inserted {
		s.log.Info("download limit reached", "email", email, "document", doc.Slug)
		s.publish(ctx, events.DownloadLimitReached{
			BaseEvent:    events.NewBaseEvent(),
			Email:        email,
			DocumentSlug: doc.Slug,
			Cap:          s.cap,
		})
		return Result{
			LimitReached:  true,
			SchedulingURL: s.schedulingURL,
			DocumentTitle: doc.Title,
		}, nil
	}

	signed, err := s.signer.GenerateDownloadURL(ctx, s.bucket, doc.FileKey, s.urlTTL)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "failed to sign download URL", err)
	}

	s.publish(ctx, events.DocumentDownloaded{
		BaseEvent:     events.NewBaseEvent(),
		Email:         email,
		DocumentSlug:  doc.Slug,
		DownloadCount: count,
		DownloadedAt:  time.Now().UTC(),
	})

	s.scheduleFollowUp(ctx, email, req.Name, doc)

	return Result{
		Granted:       true,
		URL:           signed.URL,
		FileKey:       signed.FileKey,
		ExpiresIn:     int(s.urlTTL.Seconds()),
		Remaining:     s.cap - count,
		DocumentTitle: doc.Title,
	}, nil
}

// Remaining reports how many gated downloads an email has left.
func (s *Service) Remaining(ctx context.Context, email string) (int, error) {
	count, err := s.ledger.CountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "failed to count downloads", err)
	}
	remaining := s.cap - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// CanDownload reports whether an email is still under the lifetime cap.
func (s *Service) CanDownload(ctx context.Context, email string) (bool, error) {
	remaining, err := s.Remaining(ctx, email)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

func (s *Service) scheduleFollowUp(ctx context.Context, email, name string, doc repository.Document) {
	if s.followUp == nil {
		return
	}
	sendAt := time.Now().UTC().Add(s.followUpDelay)
	if err := s.followUp.ScheduleDownloadFollowUp(ctx, email, name, doc.Title, sendAt); err != nil {
		s.log.Warn("failed to schedule download follow-up", "email", email, "error", err)
		return
	}
	if err := s.ledger.MarkFollowUpSent(ctx, email, doc.Slug); err != nil {
		s.log.Warn("failed to mark follow-up as scheduled", "email", email, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
