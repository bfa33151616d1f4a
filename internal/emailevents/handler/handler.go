// Package handler exposes the provider webhook endpoint and the admin
// recipient health endpoint.
package handler

import (
	"net/http"

	"funnel_backend/internal/emailevents/service"
	"funnel_backend/internal/emailevents/transport"
	"funnel_backend/platform/httpkit"
	"funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const errValidation = "validation error"

// Handler handles email event requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterWebhookRoutes mounts the provider-facing ingest route.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/email-events", h.Ingest)
}

// RegisterAdminRoutes mounts the analytics routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/:email", h.RecipientHealth)
}

// Ingest accepts a provider webhook batch. The response is 200 with
// per-item counts; only a structurally broken payload gets a non-2xx.
// POST /api/v1/webhooks/email-events
func (h *Handler) Ingest(c *gin.Context) {
	var batch []transport.WebhookEvent
	if err := c.ShouldBindBodyWith(&batch, binding.JSON); err != nil {
		// Some providers post a single object instead of an array.
		var single transport.WebhookEvent
		if err := c.ShouldBindBodyWith(&single, binding.JSON); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", err.Error())
			return
		}
		batch = []transport.WebhookEvent{single}
	}

	result := h.service.IngestBatch(c.Request.Context(), batch)
	c.JSON(http.StatusOK, transport.IngestResponse{
		Processed: result.Processed,
		Failed:    result.Failed,
	})
}

// RecipientHealth returns the derived health aggregate for an email.
// GET /api/v1/admin/email-health/:email
func (h *Handler) RecipientHealth(c *gin.Context) {
	email := c.Param("email")
	if err := h.val.Var(email, "required,email"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, "a valid email path parameter is required")
		return
	}

	health, err := h.service.RecipientHealth(c.Request.Context(), email)
	if httpkit.HandleError(c, err) {
		return
	}

	events := make([]transport.EventResponse, 0, len(health.Events))
	for i := range health.Events {
		e := &health.Events[i]
		resp := transport.EventResponse{
			EventType:  e.EventType,
			OccurredAt: e.OccurredAt,
		}
		if e.Reason != nil {
			resp.Reason = *e.Reason
		}
		if e.URL != nil {
			resp.URL = *e.URL
		}
		events = append(events, resp)
	}

	c.JSON(http.StatusOK, transport.RecipientHealthResponse{
		Email:       health.Email,
		Status:      health.Status,
		Suppressed:  health.Suppressed,
		LastEventAt: health.LastEventAt,
		Counts:      health.Counts,
		Events:      events,
	})
}
