// Package handler exposes the quote HTTP endpoints: the admin lifecycle
// API and the public shareable quote page.
package handler

import (
	"net/http"

	"funnel_backend/internal/quotes/repository"
	"funnel_backend/internal/quotes/service"
	"funnel_backend/internal/quotes/transport"
	"funnel_backend/platform/httpkit"
	"funnel_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
	errInvalidID      = "invalid quote id"
)

// Handler handles quote requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterAdminRoutes mounts the authenticated quote lifecycle routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/pdf", h.PDF)
	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/extend", h.Extend)
	rg.POST("/sweep", h.Sweep)
}

// RegisterPublicRoutes mounts the unauthenticated quote page route.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/:token", h.PublicView)
}

// Create prices and stores a draft quote.
// POST /api/v1/admin/quotes
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	view, err := h.service.Create(c.Request.Context(), service.CreateInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Company:       req.Company,
		Tier:          req.Tier,
		Seats:         req.Seats,
		TermYears:     req.TermYears,
		Addons:        req.Addons,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, toQuoteResponse(view))
}

// List returns one page of quotes.
// GET /api/v1/admin/quotes?status=&search=&page=&pageSize=
func (h *Handler) List(c *gin.Context) {
	params := repository.ListParams{
		Search:   c.Query("search"),
		Page:     httpkit.QueryInt(c, "page", 1),
		PageSize: httpkit.QueryInt(c, "pageSize", 20),
	}
	if status := c.Query("status"); status != "" {
		params.Status = &status
	}

	result, err := h.service.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.QuoteResponse, 0, len(result.Items))
	for _, view := range result.Items {
		items = append(items, toQuoteResponse(view))
	}

	c.JSON(http.StatusOK, transport.ListQuotesResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// Get returns one quote with its expiry status.
// GET /api/v1/admin/quotes/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.quoteID(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(view))
}

// PDF renders the proposal PDF on demand.
// GET /api/v1/admin/quotes/:id/pdf
func (h *Handler) PDF(c *gin.Context) {
	id, ok := h.quoteID(c)
	if !ok {
		return
	}
	pdfBytes, fileName, err := h.service.RenderPDF(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// Send renders the proposal PDF and queues the proposal email.
// POST /api/v1/admin/quotes/:id/send
func (h *Handler) Send(c *gin.Context) {
	id, ok := h.quoteID(c)
	if !ok {
		return
	}
	view, err := h.service.Send(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(view))
}

// Extend pushes the quote deadline out.
// POST /api/v1/admin/quotes/:id/extend
func (h *Handler) Extend(c *gin.Context) {
	id, ok := h.quoteID(c)
	if !ok {
		return
	}

	var req transport.ExtendQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	view, err := h.service.Extend(c.Request.Context(), id, req.Days)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(view))
}

// Sweep runs the expiry sweep on demand. The scheduler runs the same
// sweep periodically; this endpoint exists for operations.
// POST /api/v1/admin/quotes/sweep
func (h *Handler) Sweep(c *gin.Context) {
	queued, err := h.service.SweepExpiring(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, transport.SweepResponse{RemindersQueued: queued})
}

// PublicView serves the customer-facing quote page by shareable token.
// GET /api/v1/public/quotes/:token
func (h *Handler) PublicView(c *gin.Context) {
	token := c.Param("token")
	if err := h.val.Var(token, "required,len=32,hexadecimal"); err != nil {
		httpkit.Error(c, http.StatusNotFound, "quote not found", "")
		return
	}

	view, err := h.service.GetByPublicToken(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}

	q := view.Quote
	resp := transport.PublicQuoteResponse{
		QuoteNumber:   q.QuoteNumber,
		CustomerName:  q.CustomerName,
		TierName:      q.TierName,
		Currency:      q.Currency,
		LineItems:     transport.ToLineItems(view.LineItems),
		Features:      q.Features,
		AnnualCents:   q.AnnualCents,
		TermYears:     q.TermYears,
		TotalCents:    q.TotalCents,
		ExpiresAt:     q.ExpiresAt,
		ExpiryState:   string(view.ExpiryStatus.State),
		ExpiryMessage: view.ExpiryStatus.Message,
		DaysRemaining: view.ExpiryStatus.DaysRemaining,
	}
	if q.Company != nil {
		resp.Company = *q.Company
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) quoteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidID, "")
		return uuid.Nil, false
	}
	return id, true
}

func toQuoteResponse(view *service.View) transport.QuoteResponse {
	q := view.Quote
	resp := transport.QuoteResponse{
		ID:             q.ID,
		QuoteNumber:    q.QuoteNumber,
		CustomerName:   q.CustomerName,
		CustomerEmail:  q.CustomerEmail,
		Tier:           q.Tier,
		TierName:       q.TierName,
		Currency:       q.Currency,
		LineItems:      transport.ToLineItems(view.LineItems),
		Features:       q.Features,
		Seats:          q.Seats,
		AnnualCents:    q.AnnualCents,
		TermYears:      q.TermYears,
		TotalCents:     q.TotalCents,
		Status:         q.Status,
		ExpiresAt:      q.ExpiresAt,
		ExpiryState:    string(view.ExpiryStatus.State),
		ExpiryMessage:  view.ExpiryStatus.Message,
		DaysRemaining:  view.ExpiryStatus.DaysRemaining,
		PublicURL:      view.PublicURL,
		ReminderSentAt: q.ReminderSentAt,
		SentAt:         q.SentAt,
		CreatedAt:      q.CreatedAt,
	}
	if q.Company != nil {
		resp.Company = *q.Company
	}
	return resp
}
