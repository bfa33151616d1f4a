package outbox

import "time"

// QuoteProposalPayload is the metadata stored with a quote_proposal row.
// PDFFileKey points at the rendered proposal in object storage; the
// dispatcher fetches it and attaches it at send time.
type QuoteProposalPayload struct {
	RecipientName string    `json:"recipientName"`
	QuoteNumber   string    `json:"quoteNumber"`
	Tier          string    `json:"tier"`
	AnnualCents   int64     `json:"annualCents"`
	TotalCents    int64     `json:"totalCents"`
	TermYears     int       `json:"termYears"`
	ProposalURL   string    `json:"proposalUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
	PDFFileKey    string    `json:"pdfFileKey,omitempty"`
}

// QuoteReminderPayload is the metadata stored with a quote_reminder row.
type QuoteReminderPayload struct {
	RecipientName string    `json:"recipientName"`
	QuoteNumber   string    `json:"quoteNumber"`
	ProposalURL   string    `json:"proposalUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// DownloadFollowUpPayload is the metadata stored with a download_followup row.
type DownloadFollowUpPayload struct {
	Name          string `json:"name"`
	DocumentTitle string `json:"documentTitle"`
	SchedulingURL string `json:"schedulingUrl"`
}

// CustomPayload is the metadata stored with a custom row.
type CustomPayload struct {
	HTML string `json:"html"`
	Text string `json:"text"`
}
