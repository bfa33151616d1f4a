package adapters

import (
	"context"
	"fmt"
	"time"

	dlsvc "funnel_backend/internal/downloads/service"
	"funnel_backend/internal/email/outbox"
)

// DownloadFollowUpScheduler queues nurture emails through the email outbox.
type DownloadFollowUpScheduler struct {
	outbox        *outbox.Repository
	schedulingURL string
}

// NewDownloadFollowUpScheduler creates the adapter.
func NewDownloadFollowUpScheduler(repo *outbox.Repository, schedulingURL string) *DownloadFollowUpScheduler {
	return &DownloadFollowUpScheduler{outbox: repo, schedulingURL: schedulingURL}
}

// ScheduleDownloadFollowUp inserts a pending outbox row due at sendAt.
func (a *DownloadFollowUpScheduler) ScheduleDownloadFollowUp(ctx context.Context, recipient, name, documentTitle string, sendAt time.Time) error {
	_, err := a.outbox.Insert(ctx, outbox.InsertParams{
		Recipient:    recipient,
		EmailType:    outbox.TypeDownloadFollowUp,
		Subject:      fmt.Sprintf("Following up on %s", documentTitle),
		ScheduledFor: sendAt,
		Payload: outbox.DownloadFollowUpPayload{
			Name:          name,
			DocumentTitle: documentTitle,
			SchedulingURL: a.schedulingURL,
		},
	})
	return err
}

// Compile-time check against the downloads module's contract.
var _ dlsvc.FollowUpScheduler = (*DownloadFollowUpScheduler)(nil)
