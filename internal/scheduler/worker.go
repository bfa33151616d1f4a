package scheduler

import (
	"context"
	"fmt"

	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ExpirySweeper runs the quote expiry sweep. The quotes service implements it.
type ExpirySweeper interface {
	SweepExpiring(ctx context.Context) (int, error)
}

// Worker consumes scheduler tasks: due outbox emails and quote expiry sweeps.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher *EmailDispatcher
	sweeper    ExpirySweeper
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, dispatcher *EmailDispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		dispatcher: dispatcher,
		log:        log,
	}

	mux.HandleFunc(TaskEmailOutboxDue, w.handleEmailOutboxDue)
	mux.HandleFunc(TaskQuoteExpirySweep, w.handleQuoteExpirySweep)

	return w, nil
}

// SetExpirySweeper wires the quote expiry sweep. Without it sweep tasks
// are dropped.
func (w *Worker) SetExpirySweeper(sweeper ExpirySweeper) {
	w.sweeper = sweeper
}

func (w *Worker) handleEmailOutboxDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEmailOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	return w.dispatcher.Dispatch(ctx, outboxID)
}

func (w *Worker) handleQuoteExpirySweep(ctx context.Context, task *asynq.Task) error {
	if w.sweeper == nil {
		return nil
	}
	_, err := w.sweeper.SweepExpiring(ctx)
	return err
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
