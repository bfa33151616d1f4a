package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"funnel_backend/internal/adapters/storage"
	"funnel_backend/internal/email"
	"funnel_backend/internal/email/outbox"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

// EmailDispatcher sends one claimed outbox record. Failures are recorded
// on the record itself: the row goes back to pending with a backoff until
// the retry budget runs out.
type EmailDispatcher struct {
	repo       *outbox.Repository
	sender     email.Sender
	storage    storage.StorageService
	pdfBucket  string
	maxRetries int
	log        *logger.Logger
}

func NewEmailDispatcher(
	repo *outbox.Repository,
	sender email.Sender,
	storageSvc storage.StorageService,
	pdfBucket string,
	maxRetries int,
	log *logger.Logger,
) *EmailDispatcher {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &EmailDispatcher{
		repo:       repo,
		sender:     sender,
		storage:    storageSvc,
		pdfBucket:  pdfBucket,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Dispatch sends the outbox record with the given id. A send failure is
// not returned to the caller; it is recorded on the record so the poller
// re-claims it after the backoff.
func (d *EmailDispatcher) Dispatch(ctx context.Context, id uuid.UUID) error {
	rec, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSent {
		return nil
	}

	sendErr := d.send(ctx, &rec)
	d.log.EmailDispatch(rec.EmailType, rec.Recipient, rec.RetryCount, sendErr)

	if sendErr != nil {
		return d.repo.MarkAttemptFailed(ctx, rec.ID, sendErr.Error(), d.maxRetries)
	}
	return d.repo.MarkSent(ctx, rec.ID)
}

func (d *EmailDispatcher) send(ctx context.Context, rec *outbox.Record) error {
	switch rec.EmailType {
	case outbox.TypeQuoteProposal:
		var p outbox.QuoteProposalPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decoding proposal payload: %w", err)
		}
		attachments, err := d.proposalAttachments(ctx, &p)
		if err != nil {
			return err
		}
		return d.sender.SendQuoteProposalEmail(ctx, rec.Recipient, email.QuoteProposalParams{
			RecipientName: p.RecipientName,
			QuoteNumber:   p.QuoteNumber,
			Tier:          p.Tier,
			AnnualCents:   p.AnnualCents,
			TotalCents:    p.TotalCents,
			TermYears:     p.TermYears,
			ProposalURL:   p.ProposalURL,
			ExpiresAt:     p.ExpiresAt,
		}, attachments...)

	case outbox.TypeQuoteReminder:
		var p outbox.QuoteReminderPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decoding reminder payload: %w", err)
		}
		return d.sender.SendQuoteReminderEmail(ctx, rec.Recipient, p.RecipientName, p.QuoteNumber, p.ProposalURL, p.ExpiresAt)

	case outbox.TypeDownloadFollowUp:
		var p outbox.DownloadFollowUpPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decoding follow-up payload: %w", err)
		}
		return d.sender.SendDownloadFollowUpEmail(ctx, rec.Recipient, p.Name, p.DocumentTitle, p.SchedulingURL)

	case outbox.TypeCustom:
		var p outbox.CustomPayload
		if err := json.Unmarshal(rec.Payload, &p); err != nil {
			return fmt.Errorf("decoding custom payload: %w", err)
		}
		return d.sender.SendCustomEmail(ctx, rec.Recipient, rec.Subject, p.HTML, p.Text)

	default:
		return fmt.Errorf("unknown email type %q", rec.EmailType)
	}
}

func (d *EmailDispatcher) proposalAttachments(ctx context.Context, p *outbox.QuoteProposalPayload) ([]email.Attachment, error) {
	if p.PDFFileKey == "" || d.storage == nil {
		return nil, nil
	}

	reader, err := d.storage.DownloadFile(ctx, d.pdfBucket, p.PDFFileKey)
	if err != nil {
		return nil, fmt.Errorf("fetching proposal PDF: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading proposal PDF: %w", err)
	}

	return []email.Attachment{{
		Content:  content,
		FileName: "quote-" + p.QuoteNumber + ".pdf",
		MIMEType: "application/pdf",
	}}, nil
}
