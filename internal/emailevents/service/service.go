// Package service ingests provider email engagement webhooks into an
// append-only log and derives per-recipient health from it.
package service

import (
	"context"
	"strings"
	"time"

	"funnel_backend/internal/emailevents/repository"
	"funnel_backend/internal/emailevents/transport"
	"funnel_backend/internal/events"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"

	"github.com/google/uuid"
)

// Store is the event log the service writes to and scans.
type Store interface {
	Insert(ctx context.Context, e repository.Event) (bool, error)
	ListByRecipient(ctx context.Context, email string) ([]repository.Event, error)
}

// IngestResult counts batch outcomes. Duplicates are processed, not
// failed: replaying a batch is expected provider behavior.
type IngestResult struct {
	Processed int
	Failed    int
}

// Service implements webhook ingestion and recipient health.
type Service struct {
	store    Store
	eventBus events.Bus
	val      *validator.Validator
	log      *logger.Logger

	now func() time.Time
}

func New(store Store, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		val:      val,
		log:      log,
		now:      time.Now,
	}
}

// IngestBatch processes a provider webhook batch. Each item is validated,
// normalized and appended independently: one bad item increments Failed
// and the rest of the batch continues. Items whose provider event id was
// already seen are dropped without side effects.
func (s *Service) IngestBatch(ctx context.Context, batch []transport.WebhookEvent) IngestResult {
	var result IngestResult
	for i := range batch {
		item := &batch[i]
		if err := s.ingestOne(ctx, item); err != nil {
			result.Failed++
			s.log.Warn("email event rejected",
				"provider_event_id", item.ProviderEventID(),
				"event", item.Event,
				"error", err,
			)
			continue
		}
		result.Processed++
	}
	return result
}

func (s *Service) ingestOne(ctx context.Context, item *transport.WebhookEvent) error {
	email := strings.ToLower(strings.TrimSpace(item.Email))
	if err := s.val.Var(email, "required,email"); err != nil {
		return errInvalidRecipient
	}
	kind, ok := providerKinds[strings.ToLower(strings.TrimSpace(item.Event))]
	if !ok {
		return errUnknownEventKind
	}
	if item.Timestamp <= 0 {
		return errMissingTimestamp
	}
	providerEventID := item.ProviderEventID()
	if providerEventID == "" {
		return errMissingEventID
	}

	e := repository.Event{
		ID:              uuid.New(),
		ProviderEventID: providerEventID,
		Recipient:       email,
		EventType:       kind,
		OccurredAt:      item.OccurredAt(),
		ReceivedAt:      s.now(),
	}
	if item.MessageID != "" {
		e.ProviderMessageID = &item.MessageID
	}
	if item.Reason != "" {
		e.Reason = &item.Reason
	}
	if item.Link != "" {
		e.URL = &item.Link
	}

	inserted, err := s.store.Insert(ctx, e)
	if err != nil {
		return err
	}
	if !inserted {
		// Replay of a known event id. Idempotent: no events re-fired.
		return nil
	}

	s.eventBus.Publish(ctx, events.EmailEngagementRecorded{
		BaseEvent:       events.NewBaseEvent(),
		ProviderEventID: e.ProviderEventID,
		Recipient:       e.Recipient,
		EventType:       e.EventType,
		EventAt:         e.OccurredAt,
	})
	if suppressing(kind) {
		reason := kind
		if e.Reason != nil {
			reason = *e.Reason
		}
		s.eventBus.Publish(ctx, events.RecipientSuppressed{
			BaseEvent: events.NewBaseEvent(),
			Recipient: e.Recipient,
			Reason:    reason,
		})
	}
	return nil
}

// RecipientHealth derives the current health aggregate for an email by
// scanning its event log.
func (s *Service) RecipientHealth(ctx context.Context, email string) (*Health, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	eventLog, err := s.store.ListByRecipient(ctx, email)
	if err != nil {
		return nil, err
	}
	h := deriveHealth(email, eventLog)
	return &h, nil
}
