// Package transport defines the HTTP request/response shapes for the leads module.
package transport

// QualifyLeadRequest is the public form submission payload.
type QualifyLeadRequest struct {
	Email   string `json:"email" validate:"required,email,max=320"`
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Company string `json:"company" validate:"max=200"`
	Title   string `json:"title" validate:"max=200"`
	Phone   string `json:"phone" validate:"max=32"`
}

// EnrichmentPayload echoes the firmographic data used for scoring.
type EnrichmentPayload struct {
	Domain           string `json:"domain,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
	Industry         string `json:"industry,omitempty"`
	EmployeeCount    int    `json:"employeeCount,omitempty"`
	Country          string `json:"country,omitempty"`
	RevenueBand      string `json:"revenueBand,omitempty"`
}

// QualifyLeadResponse is the verdict returned to the marketing site.
// NextStep tells the frontend which branch to render.
type QualifyLeadResponse struct {
	Score         int                `json:"score"`
	Qualified     bool               `json:"qualified"`
	Reasons       []string           `json:"reasons"`
	Enrichment    *EnrichmentPayload `json:"enrichment,omitempty"`
	NextStep      string             `json:"nextStep"`
	SchedulingURL string             `json:"schedulingUrl,omitempty"`
	Message       string             `json:"message"`
}
