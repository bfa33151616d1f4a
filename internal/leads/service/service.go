// Package service orchestrates lead qualification: enrichment lookup,
// rule evaluation and the resulting funnel branch.
package service

import (
	"context"

	"funnel_backend/internal/events"
	"funnel_backend/internal/leads/scoring"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/phone"
)

// NextStep values tell the frontend which branch of the funnel to render.
const (
	NextStepSchedule = "schedule"
	NextStepHold     = "hold"
)

// Enricher resolves firmographic data for a business email.
// A nil result means no data; it never fails the qualification.
type Enricher interface {
	EnrichByEmail(ctx context.Context, email string) *scoring.Enrichment
}

// Result is the outcome of one qualification attempt.
type Result struct {
	Verdict       scoring.Verdict
	NextStep      string
	SchedulingURL string
	// NormalizedPhone is the E.164 form of the submitted phone, when one
	// was submitted and parseable.
	NormalizedPhone string
}

// Service evaluates inbound leads.
type Service struct {
	policy        scoring.Policy
	enricher      Enricher
	schedulingURL string
	bus           events.Bus
	log           *logger.Logger
}

// New creates the leads service.
func New(policy scoring.Policy, enricher Enricher, cfg config.LeadsConfig, log *logger.Logger) *Service {
	return &Service{
		policy:        policy,
		enricher:      enricher,
		schedulingURL: cfg.GetSchedulingURL(),
		log:           log,
	}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// Qualify scores a submitted lead and decides the funnel branch.
// Enrichment failure degrades to a nil enrichment; a verdict is always produced.
func (s *Service) Qualify(ctx context.Context, contact scoring.Contact, rawPhone string) Result {
	var enrichment *scoring.Enrichment
	if s.enricher != nil {
		enrichment = s.enricher.EnrichByEmail(ctx, contact.Email)
	}

	verdict := s.policy.Score(contact, enrichment)
	s.log.LeadScored(contact.Email, verdict.Score, verdict.Qualified)

	result := Result{Verdict: verdict, NextStep: NextStepHold}
	if verdict.Qualified {
		result.NextStep = NextStepSchedule
		result.SchedulingURL = s.schedulingURL
	}

	if rawPhone != "" {
		result.NormalizedPhone = phone.NormalizeE164(rawPhone)
	}

	s.publishVerdict(ctx, contact, verdict)
	return result
}

func (s *Service) publishVerdict(ctx context.Context, contact scoring.Contact, verdict scoring.Verdict) {
	if s.bus == nil {
		return
	}

	if verdict.Qualified {
		evt := events.LeadQualified{
			BaseEvent: events.NewBaseEvent(),
			Email:     contact.Email,
			Score:     verdict.Score,
		}
		if verdict.Enrichment != nil {
			evt.CompanyName = verdict.Enrichment.OrganizationName
			evt.Industry = verdict.Enrichment.Industry
			evt.Headcount = verdict.Enrichment.EmployeeCount
		}
		s.bus.Publish(ctx, evt)
		return
	}

	s.bus.Publish(ctx, events.LeadDisqualified{
		BaseEvent: events.NewBaseEvent(),
		Email:     contact.Email,
		Score:     verdict.Score,
	})
}
