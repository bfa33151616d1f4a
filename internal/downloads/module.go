// Package downloads provides the gated collateral download domain module.
package downloads

import (
	"funnel_backend/internal/adapters/storage"
	"funnel_backend/internal/downloads/handler"
	"funnel_backend/internal/downloads/repository"
	"funnel_backend/internal/downloads/service"
	apphttp "funnel_backend/internal/http"
	"funnel_backend/platform/config"
	"funnel_backend/platform/events"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the downloads domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new downloads module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, bucket string, cfg config.DownloadsConfig, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bucket, cfg, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "downloads"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	downloads := ctx.V1.Group("/downloads")
	downloads.Use(ctx.FunnelRateLimiter.RateLimit())
	m.handler.RegisterRoutes(downloads)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
