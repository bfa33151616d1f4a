package scheduler

import (
	"context"
	"time"

	"funnel_backend/internal/email/outbox"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pollInterval     = 2 * time.Second
	claimBatchSize   = 50
	stuckCheckEvery  = 5 * time.Minute
	stuckAfter       = 10 * time.Minute
	sweepEnqueueEach = time.Hour
)

// OutboxPoller claims due scheduled emails and enqueues one dispatch task
// per record. It also re-releases records stuck in processing and enqueues
// the periodic quote expiry sweep.
type OutboxPoller struct {
	client *Client
	repo   *outbox.Repository
	log    *logger.Logger
}

func NewOutboxPoller(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*OutboxPoller, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &OutboxPoller{
		client: client,
		repo:   outbox.New(pool),
		log:    log,
	}, nil
}

func (p *OutboxPoller) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}

// Run polls until the context is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	if p == nil || p.client == nil || p.repo == nil {
		return
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	stuckTicker := time.NewTicker(stuckCheckEvery)
	defer stuckTicker.Stop()
	sweepTicker := time.NewTicker(sweepEnqueueEach)
	defer sweepTicker.Stop()

	// Kick one sweep on startup so reminders are not delayed by up to an
	// hour after a deploy.
	p.enqueueSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stuckTicker.C:
			released, err := p.repo.ReleaseStuck(ctx, stuckAfter)
			if err != nil {
				p.log.Warn("outbox stuck release failed", "error", err)
			} else if released > 0 {
				p.log.Info("released stuck outbox records", "count", released)
			}
			continue
		case <-sweepTicker.C:
			p.enqueueSweep(ctx)
			continue
		case <-ticker.C:
		}

		records, err := p.repo.ClaimDue(ctx, claimBatchSize)
		if err != nil {
			p.log.Warn("outbox claim failed", "error", err)
			continue
		}

		for _, rec := range records {
			if err := p.client.EnqueueEmailOutboxDue(ctx, rec.ID.String()); err != nil {
				p.requeue(ctx, rec, err)
			}
		}
	}
}

func (p *OutboxPoller) enqueueSweep(ctx context.Context) {
	if err := p.client.EnqueueQuoteExpirySweep(ctx); err != nil {
		p.log.Warn("failed to enqueue quote expiry sweep", "error", err)
	}
}

func (p *OutboxPoller) requeue(ctx context.Context, rec outbox.Record, cause error) {
	msg := cause.Error()
	if err := p.repo.MarkPending(ctx, rec.ID, &msg); err != nil {
		p.log.Warn("failed to requeue outbox record", "outbox_id", rec.ID, "error", err)
	}
}
