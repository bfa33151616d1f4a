package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskEmailOutboxDue = "email.outbox.due"

const TaskQuoteExpirySweep = "quotes.expiry.sweep"

type EmailOutboxDuePayload struct {
	OutboxID string `json:"outboxId"`
}

func NewEmailOutboxDueTask(payload EmailOutboxDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEmailOutboxDue, data), nil
}

func ParseEmailOutboxDuePayload(task *asynq.Task) (EmailOutboxDuePayload, error) {
	var payload EmailOutboxDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EmailOutboxDuePayload{}, err
	}
	return payload, nil
}

func NewQuoteExpirySweepTask() *asynq.Task {
	return asynq.NewTask(TaskQuoteExpirySweep, nil)
}
