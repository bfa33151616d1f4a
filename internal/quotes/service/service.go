package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"funnel_backend/internal/adapters/storage"
	"funnel_backend/internal/email/outbox"
	"funnel_backend/internal/events"
	"funnel_backend/internal/pdf"
	"funnel_backend/internal/quotes/expiry"
	"funnel_backend/internal/quotes/proposal"
	"funnel_backend/internal/quotes/repository"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

const proposalFolder = "proposals"

// Outbox queues emails for later dispatch.
type Outbox interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
}

// Service implements the quote lifecycle: pricing, proposal generation,
// delivery and expiry tracking.
type Service struct {
	repo      *repository.Repository
	renderer  *proposal.Renderer
	pdf       pdf.Renderer
	storage   storage.StorageService
	pdfBucket string
	outbox    Outbox
	eventBus  events.Bus
	cfg       config.QuotesConfig
	log       *logger.Logger

	now func() time.Time
}

func New(
	repo *repository.Repository,
	renderer *proposal.Renderer,
	pdfRenderer pdf.Renderer,
	storageSvc storage.StorageService,
	pdfBucket string,
	ob Outbox,
	eventBus events.Bus,
	cfg config.QuotesConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		renderer:  renderer,
		pdf:       pdfRenderer,
		storage:   storageSvc,
		pdfBucket: pdfBucket,
		outbox:    ob,
		eventBus:  eventBus,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CreateInput is the admin-supplied quote definition.
type CreateInput struct {
	CustomerName  string
	CustomerEmail string
	Company       string
	Tier          string
	Seats         int
	TermYears     int
	Addons        []string
}

// View is a quote enriched with its computed expiry status.
type View struct {
	Quote        *repository.Quote
	LineItems    []LineItem
	ExpiryStatus expiry.Status
	PublicURL    string
}

// Create prices the request and stores a draft quote.
func (s *Service) Create(ctx context.Context, in CreateInput) (*View, error) {
	pricing, err := ComputePricing(in.Tier, in.Seats, in.TermYears, in.Addons)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	quoteNumber, err := s.repo.NextQuoteNumber(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to allocate quote number", err)
	}

	token, err := newPublicToken()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate quote token", err)
	}

	itemsJSON, err := json.Marshal(pricing.LineItems)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to encode line items", err)
	}

	now := s.now()
	var company *string
	if in.Company != "" {
		company = &in.Company
	}
	q := &repository.Quote{
		ID:            uuid.New(),
		QuoteNumber:   quoteNumber,
		PublicToken:   token,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Company:       company,
		Tier:          pricing.TierKey,
		TierName:      pricing.TierName,
		Currency:      pricing.Currency,
		LineItems:     itemsJSON,
		Features:      pricing.Features,
		Seats:         in.Seats,
		AnnualCents:   pricing.AnnualCents,
		TermYears:     pricing.TermYears,
		TotalCents:    pricing.TotalCents,
		Status:        repository.StatusDraft,
		ExpiresAt:     expiry.ExpirationDate(now, s.cfg.GetQuoteValidityDays()),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, q); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create quote", err)
	}

	s.log.Info("quote created",
		"quote_number", q.QuoteNumber,
		"tier", q.Tier,
		"total_cents", q.TotalCents,
	)
	s.eventBus.Publish(ctx, events.QuoteCreated{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        q.ID,
		QuoteNumber:    q.QuoteNumber,
		RecipientEmail: q.CustomerEmail,
		Tier:           q.Tier,
		TotalCents:     q.TotalCents,
	})

	return s.view(q)
}

// Send renders the proposal PDF, stores it and queues the proposal email.
func (s *Service) Send(ctx context.Context, id uuid.UUID) (*View, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := s.renderProposalPDF(ctx, q)
	if err != nil {
		return nil, err
	}

	fileKey, err := s.storage.UploadFile(ctx, s.pdfBucket, proposalFolder,
		q.QuoteNumber+".pdf", "application/pdf",
		bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store proposal PDF", err)
	}

	publicURL := s.publicURL(q.PublicToken)
	if _, err := s.outbox.Insert(ctx, outbox.InsertParams{
		Recipient: q.CustomerEmail,
		EmailType: outbox.TypeQuoteProposal,
		Subject:   fmt.Sprintf("Your compliance platform quote %s", q.QuoteNumber),
		Payload: outbox.QuoteProposalPayload{
			RecipientName: q.CustomerName,
			QuoteNumber:   q.QuoteNumber,
			Tier:          q.TierName,
			AnnualCents:   q.AnnualCents,
			TotalCents:    q.TotalCents,
			TermYears:     q.TermYears,
			ProposalURL:   publicURL,
			ExpiresAt:     q.ExpiresAt,
			PDFFileKey:    fileKey,
		},
		ScheduledFor: s.now(),
	}); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to queue proposal email", err)
	}

	if err := s.repo.MarkSent(ctx, q.ID, fileKey); err != nil {
		return nil, err
	}
	q.Status = repository.StatusSent
	q.PDFFileKey = &fileKey

	s.eventBus.Publish(ctx, events.QuoteSent{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        q.ID,
		QuoteNumber:    q.QuoteNumber,
		RecipientEmail: q.CustomerEmail,
		RecipientName:  q.CustomerName,
		PublicToken:    q.PublicToken,
		ExpiresAt:      q.ExpiresAt,
	})

	return s.view(q)
}

// RenderPDF renders the proposal PDF on demand without touching quote
// state. Returns the PDF bytes and a download filename.
func (s *Service) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err := s.renderProposalPDF(ctx, q)
	if err != nil {
		return nil, "", err
	}
	return pdfBytes, "quote-" + q.QuoteNumber + ".pdf", nil
}

// Get returns a quote with its computed expiry status.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(q)
}

// GetByPublicToken serves the shareable quote page. Expired quotes remain
// viewable; the status tells the caller the window has closed.
func (s *Service) GetByPublicToken(ctx context.Context, token string) (*View, error) {
	q, err := s.repo.GetByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(q)
}

// ListView is one page of quote views.
type ListView struct {
	Items      []*View
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// List returns one admin page of quotes. Views are built from the listed
// rows directly; no per-quote round trips.
func (s *Service) List(ctx context.Context, p repository.ListParams) (*ListView, error) {
	result, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	items, err := s.views(result.Items)
	if err != nil {
		return nil, err
	}
	return &ListView{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

func (s *Service) views(quotes []repository.Quote) ([]*View, error) {
	items := make([]*View, 0, len(quotes))
	for i := range quotes {
		v, err := s.view(&quotes[i])
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// Extend pushes the quote deadline out by days, counted from whichever is
// later, the current deadline or now. Zero days means the configured
// validity window.
func (s *Service) Extend(ctx context.Context, id uuid.UUID, days int) (*View, error) {
	if days < 0 {
		return nil, apperr.BadRequest("extension days must not be negative")
	}
	if days == 0 {
		days = s.cfg.GetQuoteValidityDays()
		if days <= 0 {
			days = expiry.DefaultValidityDays
		}
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldExpiry := q.ExpiresAt
	newExpiry := expiry.Extend(q.ExpiresAt, s.now(), days)
	if err := s.repo.UpdateExpiresAt(ctx, q.ID, newExpiry); err != nil {
		return nil, err
	}
	q.ExpiresAt = newExpiry
	q.ReminderSentAt = nil

	s.log.Info("quote extended",
		"quote_number", q.QuoteNumber,
		"old_expires_at", oldExpiry,
		"new_expires_at", newExpiry,
	)
	s.eventBus.Publish(ctx, events.QuoteExtended{
		BaseEvent:    events.NewBaseEvent(),
		QuoteID:      q.ID,
		QuoteNumber:  q.QuoteNumber,
		OldExpiresAt: oldExpiry,
		NewExpiresAt: newExpiry,
	})

	return s.view(q)
}

// SweepExpiring finds sent quotes entering the reminder window and queues
// one reminder email each. Returns how many reminders were queued.
func (s *Service) SweepExpiring(ctx context.Context) (int, error) {
	now := s.now()
	windowDays := s.cfg.GetQuoteReminderDays()
	if windowDays <= 0 {
		windowDays = expiry.DefaultReminderWindowDays
	}

	quotes, err := s.repo.ListExpiringUnreminded(ctx, now, windowDays)
	if err != nil {
		return 0, err
	}

	queued := 0
	for i := range quotes {
		q := &quotes[i]

		// Claim before queueing so overlapping sweeps never double-send.
		claimed, err := s.repo.MarkReminderSent(ctx, q.ID)
		if err != nil {
			s.log.Error("failed to claim quote for reminder", "quote_number", q.QuoteNumber, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		status := expiry.StatusAt(q.ExpiresAt, now, windowDays)
		if _, err := s.outbox.Insert(ctx, outbox.InsertParams{
			Recipient: q.CustomerEmail,
			EmailType: outbox.TypeQuoteReminder,
			Subject:   reminderSubject(q.QuoteNumber, status.DaysRemaining),
			Payload: outbox.QuoteReminderPayload{
				RecipientName: q.CustomerName,
				QuoteNumber:   q.QuoteNumber,
				ProposalURL:   s.publicURL(q.PublicToken),
				ExpiresAt:     q.ExpiresAt,
			},
			ScheduledFor: now,
		}); err != nil {
			s.log.Error("failed to queue quote reminder", "quote_number", q.QuoteNumber, "error", err)
			continue
		}

		s.eventBus.Publish(ctx, events.QuoteExpiringSoon{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        q.ID,
			QuoteNumber:    q.QuoteNumber,
			RecipientEmail: q.CustomerEmail,
			RecipientName:  q.CustomerName,
			ExpiresAt:      q.ExpiresAt,
			DaysRemaining:  status.DaysRemaining,
		})
		queued++
	}

	if queued > 0 {
		s.log.Info("quote expiry sweep queued reminders", "count", queued)
	}
	return queued, nil
}

func (s *Service) renderProposalPDF(ctx context.Context, q *repository.Quote) ([]byte, error) {
	var items []LineItem
	if err := repository.DecodeLineItems(q, &items); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to decode quote", err)
	}

	rows := make([]proposal.LineItemData, 0, len(items))
	for _, item := range items {
		rows = append(rows, proposal.LineItemData{
			Label:     item.Label,
			Quantity:  item.Quantity,
			UnitPrice: proposal.FormatUSD(item.UnitPriceCents),
			Total:     proposal.FormatUSD(item.TotalCents),
		})
	}

	company := ""
	if q.Company != nil {
		company = *q.Company
	}
	html, err := s.renderer.Render(proposal.Data{
		QuoteNumber:  q.QuoteNumber,
		CustomerName: q.CustomerName,
		Company:      company,
		TierName:     q.TierName,
		LineItems:    rows,
		Features:     q.Features,
		Annual:       proposal.FormatUSD(q.AnnualCents),
		Term:         proposal.FormatTerm(q.TermYears),
		Total:        proposal.FormatUSD(q.TotalCents),
		IssuedOn:     proposal.FormatDate(q.CreatedAt),
		ExpiresOn:    proposal.FormatDate(q.ExpiresAt),
		PublicURL:    s.publicURL(q.PublicToken),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to render proposal", err)
	}

	pdfBytes, err := s.pdf.ConvertHTML(ctx, html, pdf.ProposalOpts())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to convert proposal to PDF", err)
	}
	return pdfBytes, nil
}

func (s *Service) view(q *repository.Quote) (*View, error) {
	var items []LineItem
	if err := repository.DecodeLineItems(q, &items); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to decode quote", err)
	}
	windowDays := s.cfg.GetQuoteReminderDays()
	return &View{
		Quote:        q,
		LineItems:    items,
		ExpiryStatus: expiry.StatusAt(q.ExpiresAt, s.now(), windowDays),
		PublicURL:    s.publicURL(q.PublicToken),
	}, nil
}

func (s *Service) publicURL(token string) string {
	return s.cfg.GetAppBaseURL() + "/quotes/" + token
}

func reminderSubject(quoteNumber string, daysRemaining int) string {
	if daysRemaining <= 0 {
		return fmt.Sprintf("Quote %s expires today", quoteNumber)
	}
	return fmt.Sprintf("Quote %s expires in %d days", quoteNumber, daysRemaining)
}

func newPublicToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
