package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func TestRedisClientOptPlainURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.Addr != "localhost:6380" {
		t.Fatalf("expected addr localhost:6380, got %s", opt.Addr)
	}
	if opt.Password != "secret" {
		t.Fatalf("expected password to carry over, got %q", opt.Password)
	}
	if opt.DB != 2 {
		t.Fatalf("expected db 2, got %d", opt.DB)
	}
	if opt.TLSConfig != nil {
		t.Fatal("plain redis url must not produce a TLS config")
	}
}

func TestRedisClientOptTLSInsecure(t *testing.T) {
	opt, err := redisClientOpt("rediss://localhost:6380", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.TLSConfig == nil {
		t.Fatal("rediss url must produce a TLS config")
	}
	if !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected InsecureSkipVerify to be set")
	}
}

func TestRedisClientOptRejectsBadURL(t *testing.T) {
	if _, err := redisClientOpt("not a url", false); err == nil {
		t.Fatal("expected error for malformed redis url")
	}
}

func TestEnqueueQuoteExpirySweep(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()}),
		queue:  "funnel",
	}
	defer client.Close()

	if err := client.EnqueueQuoteExpirySweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := mr.List("asynq:{funnel}:pending")
	if err != nil {
		t.Fatalf("reading pending queue: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
}

func TestEnqueueEmailOutboxDue(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()}),
		queue:  "funnel",
	}
	defer client.Close()

	id := uuid.New().String()
	if err := client.EnqueueEmailOutboxDue(context.Background(), id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending, err := mr.List("asynq:{funnel}:pending")
	if err != nil {
		t.Fatalf("reading pending queue: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
}

func TestEmailOutboxDuePayloadRoundTrip(t *testing.T) {
	task, err := NewEmailOutboxDueTask(EmailOutboxDuePayload{OutboxID: "0b7d5a1e-4f7a-4c8e-9a2b-1c3d5e7f9a0b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TaskEmailOutboxDue {
		t.Fatalf("expected task type %s, got %s", TaskEmailOutboxDue, task.Type())
	}
	payload, err := ParseEmailOutboxDuePayload(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.OutboxID != "0b7d5a1e-4f7a-4c8e-9a2b-1c3d5e7f9a0b" {
		t.Fatalf("payload outbox id did not survive, got %q", payload.OutboxID)
	}
}
