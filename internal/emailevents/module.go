// Package emailevents provides the email engagement tracking module:
// provider webhook ingestion and per-recipient health analytics.
package emailevents

import (
	"funnel_backend/internal/emailevents/handler"
	"funnel_backend/internal/emailevents/repository"
	"funnel_backend/internal/emailevents/service"
	apphttp "funnel_backend/internal/http"
	"funnel_backend/platform/events"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the email events domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new email events module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, val, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "emailevents"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterWebhookRoutes(ctx.V1.Group("/webhooks"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/email-health"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
