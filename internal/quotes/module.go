// Package quotes provides the quote lifecycle domain module: pricing,
// proposal generation, delivery and expiry tracking.
package quotes

import (
	"funnel_backend/internal/adapters/storage"
	apphttp "funnel_backend/internal/http"
	"funnel_backend/internal/pdf"
	"funnel_backend/internal/quotes/handler"
	"funnel_backend/internal/quotes/proposal"
	"funnel_backend/internal/quotes/repository"
	"funnel_backend/internal/quotes/service"
	"funnel_backend/platform/config"
	"funnel_backend/platform/events"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired.
func NewModule(
	pool *pgxpool.Pool,
	pdfRenderer pdf.Renderer,
	storageSvc storage.StorageService,
	pdfBucket string,
	ob service.Outbox,
	cfg config.QuotesConfig,
	eventBus *events.InMemoryBus,
	val *validator.Validator,
	log *logger.Logger,
) (*Module, error) {
	renderer, err := proposal.NewRenderer()
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, renderer, pdfRenderer, storageSvc, pdfBucket, ob, eventBus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use, notably the
// scheduler's expiry sweep.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/quotes"))

	public := ctx.V1.Group("/public/quotes")
	public.Use(ctx.FunnelRateLimiter.RateLimit())
	m.handler.RegisterPublicRoutes(public)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
