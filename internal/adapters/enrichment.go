// Package adapters contains anti-corruption adapters between domain modules.
// Each adapter implements a consumer-owned interface so modules only depend
// on their own contracts.
package adapters

import (
	"context"

	enrichsvc "funnel_backend/internal/enrichment/service"
	"funnel_backend/internal/leads/scoring"
	leadsvc "funnel_backend/internal/leads/service"
)

// EnrichmentAdapter bridges the enrichment service to the leads module.
type EnrichmentAdapter struct {
	svc *enrichsvc.Service
}

// NewEnrichmentAdapter creates the adapter.
func NewEnrichmentAdapter(svc *enrichsvc.Service) *EnrichmentAdapter {
	return &EnrichmentAdapter{svc: svc}
}

// EnrichByEmail maps the provider profile to the scoring engine's shape.
func (a *EnrichmentAdapter) EnrichByEmail(ctx context.Context, email string) *scoring.Enrichment {
	profile := a.svc.EnrichByEmail(ctx, email)
	if profile == nil {
		return nil
	}
	return &scoring.Enrichment{
		Domain:           profile.Domain,
		OrganizationName: profile.CompanyName,
		Industry:         profile.Industry,
		EmployeeCount:    profile.Headcount,
		Country:          profile.Country,
		RevenueBand:      profile.RevenueBand,
	}
}

// Compile-time check against the leads module's contract.
var _ leadsvc.Enricher = (*EnrichmentAdapter)(nil)
