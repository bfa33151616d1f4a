// Package handler exposes the lead qualification HTTP endpoint.
package handler

import (
	"net/http"

	"funnel_backend/internal/leads/scoring"
	"funnel_backend/internal/leads/service"
	"funnel_backend/internal/leads/transport"
	"funnel_backend/platform/httpkit"
	"funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"

	qualifiedMsg = "Thanks! Pick a time with our compliance team below."
	holdMsg      = "Thanks for your interest. Our team will review your details and follow up by email."
)

// Handler handles lead qualification requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the leads routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/qualify", h.Qualify)
}

// Qualify scores a submitted lead and returns the verdict.
// POST /api/v1/leads/qualify
func (h *Handler) Qualify(c *gin.Context) {
	var req transport.QualifyLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	contact := scoring.Contact{
		Email:   req.Email,
		Name:    req.Name,
		Company: req.Company,
		Title:   req.Title,
	}

	result := h.service.Qualify(c.Request.Context(), contact, req.Phone)

	c.JSON(http.StatusOK, toResponse(result))
}

func toResponse(result service.Result) transport.QualifyLeadResponse {
	resp := transport.QualifyLeadResponse{
		Score:         result.Verdict.Score,
		Qualified:     result.Verdict.Qualified,
		Reasons:       result.Verdict.Reasons,
		NextStep:      result.NextStep,
		SchedulingURL: result.SchedulingURL,
		Message:       holdMsg,
	}
	if result.Verdict.Qualified {
		resp.Message = qualifiedMsg
	}
	if resp.Reasons == nil {
		resp.Reasons = []string{}
	}
	if e := result.Verdict.Enrichment; e != nil {
		resp.Enrichment = &transport.EnrichmentPayload{
			Domain:           e.Domain,
			OrganizationName: e.OrganizationName,
			Industry:         e.Industry,
			EmployeeCount:    e.EmployeeCount,
			Country:          e.Country,
			RevenueBand:      e.RevenueBand,
		}
	}
	return resp
}
