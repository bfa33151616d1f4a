// Package leads provides the lead qualification domain module.
package leads

import (
	apphttp "funnel_backend/internal/http"
	"funnel_backend/internal/leads/handler"
	"funnel_backend/internal/leads/scoring"
	"funnel_backend/internal/leads/service"
	"funnel_backend/platform/config"
	"funnel_backend/platform/events"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"
)

// Module represents the leads domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new leads module with all dependencies wired.
func NewModule(cfg config.LeadsConfig, enricher service.Enricher, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	policy, err := scoring.LoadPolicy(cfg.GetScoringPolicyPath())
	if err != nil {
		return nil, err
	}

	svc := service.New(policy, enricher, cfg, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.V1.Group("/leads")
	leads.Use(ctx.FunnelRateLimiter.RateLimit())
	m.handler.RegisterRoutes(leads)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
