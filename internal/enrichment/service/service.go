// Package service exposes firmographic enrichment to the rest of the funnel.
package service

import (
	"context"

	"funnel_backend/internal/enrichment/client"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"
)

// Profile is the enrichment result consumed by lead scoring.
type Profile struct {
	CompanyName string
	Domain      string
	Industry    string
	Headcount   int
	Country     string
	RevenueBand string
	FoundedYear int
}

// Service wraps the provider client. Lookups are best effort: any provider
// failure degrades to a nil profile so the caller can proceed without it.
type Service struct {
	client  *client.Client
	enabled bool
	log     *logger.Logger
}

// New creates the enrichment service. When no API key is configured the
// service is disabled and every lookup returns nil.
func New(cfg config.EnrichmentConfig, log *logger.Logger) *Service {
	apiKey := cfg.GetEnrichmentAPIKey()
	return &Service{
		client:  client.New(cfg.GetEnrichmentAPIURL(), apiKey, log),
		enabled: apiKey != "",
		log:     log,
	}
}

// EnrichByEmail resolves the organization behind a business email.
// Returns nil when the provider is disabled, knows nothing about the domain,
// or fails in any way.
func (s *Service) EnrichByEmail(ctx context.Context, email string) *Profile {
	if !s.enabled {
		return nil
	}

	org, err := s.client.EnrichByEmail(ctx, email)
	if err != nil {
		s.log.Warn("enrichment lookup failed, continuing without profile", "error", err)
		return nil
	}
	if org == nil {
		return nil
	}

	profile := &Profile{
		CompanyName: org.Name,
		Domain:      org.Domain,
		Industry:    org.Industry,
		Country:     org.Country,
		RevenueBand: org.RevenueBand,
	}
	if v := org.EmployeeCount.ToIntPtr(); v != nil {
		profile.Headcount = *v
	}
	if v := org.FoundedYear.ToIntPtr(); v != nil {
		profile.FoundedYear = *v
	}
	return profile
}
