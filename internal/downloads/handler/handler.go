// Package handler exposes the gated download HTTP endpoints.
package handler

import (
	"net/http"

	"funnel_backend/internal/downloads/service"
	"funnel_backend/internal/downloads/transport"
	"funnel_backend/platform/httpkit"
	"funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
	limitReachedMsg   = "You have reached the download limit. Schedule a call with our team for full access to our resource library."
)

// Handler handles download requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new downloads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the download routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.RequestDownload)
	rg.GET("/remaining", h.Remaining)
}

// RequestDownload issues a signed URL for collateral, or the limit-reached
// outcome when the email has exhausted its gated downloads.
// POST /api/v1/downloads
func (h *Handler) RequestDownload(c *gin.Context) {
	var req transport.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	result, err := h.service.RequestDownload(c.Request.Context(), service.Request{
		Email:        req.Email,
		Name:         req.Name,
		Company:      req.Company,
		Role:         req.Role,
		DocumentSlug: req.DocumentSlug,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	if result.LimitReached {
		c.JSON(http.StatusOK, transport.LimitReachedResponse{
			Granted:       false,
			LimitReached:  true,
			Message:       limitReachedMsg,
			SchedulingURL: result.SchedulingURL,
		})
		return
	}

	c.JSON(http.StatusOK, transport.DownloadGrantedResponse{
		Granted:   true,
		URL:       result.URL,
		FileKey:   result.FileKey,
		ExpiresIn: result.ExpiresIn,
		Remaining: result.Remaining,
		Title:     result.DocumentTitle,
	})
}

// Remaining reports downloads left for an email.
// GET /api/v1/downloads/remaining?email=
func (h *Handler) Remaining(c *gin.Context) {
	email := c.Query("email")
	if err := h.val.Var(email, "required,email"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, "email query parameter is required")
		return
	}

	remaining, err := h.service.Remaining(c.Request.Context(), email)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusOK, transport.RemainingResponse{
		Email:     email,
		Remaining: remaining,
	})
}
