// Package transport defines the HTTP request/response shapes for the downloads module.
package transport

// DownloadRequest is the gated-download form payload.
type DownloadRequest struct {
	Email        string `json:"email" validate:"required,email,max=320"`
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Company      string `json:"company" validate:"max=200"`
	Role         string `json:"role" validate:"max=200"`
	DocumentSlug string `json:"documentSlug" validate:"required,min=1,max=200"`
}

// DownloadGrantedResponse is returned when a signed URL was issued.
// Remaining is -1 for public documents, which do not consume the cap.
type DownloadGrantedResponse struct {
	Granted   bool   `json:"granted"`
	URL       string `json:"url"`
	FileKey   string `json:"fileKey"`
	ExpiresIn int    `json:"expiresIn"`
	Remaining int    `json:"remaining"`
	Title     string `json:"title"`
}

// LimitReachedResponse is the first-class outcome for a capped email.
// The frontend renders the scheduling path instead of a download link.
type LimitReachedResponse struct {
	Granted       bool   `json:"granted"`
	LimitReached  bool   `json:"limitReached"`
	Message       string `json:"message"`
	SchedulingURL string `json:"schedulingUrl"`
}

// RemainingResponse reports how many gated downloads an email has left.
type RemainingResponse struct {
	Email     string `json:"email"`
	Remaining int    `json:"remaining"`
}
