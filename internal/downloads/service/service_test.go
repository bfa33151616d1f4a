package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"funnel_backend/internal/adapters/storage"
	"funnel_backend/internal/downloads/repository"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/logger"
)

type fakeLedger struct {
	mu        sync.Mutex
	documents map[string]repository.Document
	records   map[string][]repository.InsertParams
}

func newFakeLedger(docs ...repository.Document) *fakeLedger {
	l := &fakeLedger{
		documents: map[string]repository.Document{},
		records:   map[string][]repository.InsertParams{},
	}
	for _, d := range docs {
		l.documents[d.Slug] = d
	}
	return l
}

func (l *fakeLedger) GetDocumentBySlug(ctx context.Context, slug string) (repository.Document, error) {
	doc, ok := l.documents[slug]
	if !ok {
		return repository.Document{}, repository.ErrDocumentNotFound
	}
	return doc, nil
}

func (l *fakeLedger) CountByEmail(ctx context.Context, email string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records[email]), nil
}

func (l *fakeLedger) RecordIfUnderCap(ctx context.Context, p repository.InsertParams, cap int) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := len(l.records[p.Email])
	if count >= cap {
		return false, count, nil
	}
	l.records[p.Email] = append(l.records[p.Email], p)
	return true, count + 1, nil
}

func (l *fakeLedger) MarkFollowUpSent(ctx context.Context, email, documentSlug string) error {
	return nil
}

type fakeSigner struct{}

func (fakeSigner) GenerateDownloadURL(ctx context.Context, bucket, fileKey string, ttl time.Duration) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{
		URL:       "https://storage.test/" + bucket + "/" + fileKey,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

type testConfig struct{}

func (testConfig) GetDownloadCap() int              { return 3 }
func (testConfig) GetDownloadURLTTL() time.Duration { return time.Hour }
func (testConfig) GetSchedulingURL() string         { return "https://calendly.test/intro" }
func (testConfig) GetFollowUpDelay() time.Duration  { return 24 * time.Hour }

var gatedDoc = repository.Document{
	Slug: "capa-whitepaper", Title: "Closing the Loop on CAPA",
	FileKey: "collateral/capa.pdf", DocType: "whitepaper", Gated: true,
}

func newTestService(ledger Ledger) *Service {
	return New(ledger, fakeSigner{}, "collateral", testConfig{}, logger.New("development"))
}

func TestRequestDownloadGrantsUnderCap(t *testing.T) {
	svc := newTestService(newFakeLedger(gatedDoc))

	result, err := svc.RequestDownload(context.Background(), Request{
		Email: "Jane@Acme.com", Name: "Jane", DocumentSlug: "capa-whitepaper",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Granted || result.LimitReached {
		t.Fatalf("expected granted download, got %+v", result)
	}
	if result.URL == "" {
		t.Fatal("expected a signed URL")
	}
	if result.Remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", result.Remaining)
	}
	if result.ExpiresIn != 3600 {
		t.Fatalf("expected expiresIn 3600, got %d", result.ExpiresIn)
	}
}

func TestRequestDownloadFourthAttemptHitsLimit(t *testing.T) {
	svc := newTestService(newFakeLedger(gatedDoc))
	ctx := context.Background()
	req := Request{Email: "x@y.com", Name: "X", DocumentSlug: "capa-whitepaper"}

	for i := 0; i < 3; i++ {
		result, err := svc.RequestDownload(ctx, req)
		if err != nil {
			t.Fatalf("download %d: unexpected error: %v", i+1, err)
		}
		if !result.Granted {
			t.Fatalf("download %d: expected grant, got %+v", i+1, result)
		}
	}

	result, err := svc.RequestDownload(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Granted || !result.LimitReached {
		t.Fatalf("expected limit-reached outcome, got %+v", result)
	}
	if result.URL != "" {
		t.Fatal("capped email must never receive a URL")
	}
	if result.SchedulingURL == "" {
		t.Fatal("limit-reached outcome must carry the scheduling URL")
	}

	ok, err := svc.CanDownload(ctx, "x@y.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected CanDownload to return false after cap")
	}
}

func TestRequestDownloadCapHoldsUnderConcurrency(t *testing.T) {
	ledger := newFakeLedger(gatedDoc)
	svc := newTestService(ledger)
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	granted := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.RequestDownload(ctx, Request{
				Email: "race@corp.com", Name: "R", DocumentSlug: "capa-whitepaper",
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			granted <- result.Granted
		}()
	}
	wg.Wait()
	close(granted)

	grants := 0
	for g := range granted {
		if g {
			grants++
		}
	}
	if grants != 3 {
		t.Fatalf("expected exactly 3 grants under concurrency, got %d", grants)
	}
	if n := len(ledger.records["race@corp.com"]); n != 3 {
		t.Fatalf("ledger must never exceed the cap: got %d records", n)
	}
}

func TestRequestDownloadUngatedBypassesLedger(t *testing.T) {
	publicDoc := repository.Document{
		Slug: "datasheet", Title: "Product Datasheet",
		FileKey: "collateral/datasheet.pdf", DocType: "capability", Gated: false,
	}
	ledger := newFakeLedger(gatedDoc, publicDoc)
	svc := newTestService(ledger)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		result, err := svc.RequestDownload(ctx, Request{
			Email: "open@corp.com", Name: "O", DocumentSlug: "datasheet",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Granted {
			t.Fatalf("public document must always be granted, got %+v", result)
		}
		if result.Remaining != -1 {
			t.Fatalf("public downloads must not report a remaining count, got %d", result.Remaining)
		}
	}

	if n := len(ledger.records["open@corp.com"]); n != 0 {
		t.Fatalf("public downloads must not consume the ledger: got %d records", n)
	}
}

func TestRequestDownloadUnknownDocument(t *testing.T) {
	svc := newTestService(newFakeLedger(gatedDoc))

	_, err := svc.RequestDownload(context.Background(), Request{
		Email: "a@b.com", Name: "A", DocumentSlug: "nope",
	})
	if err == nil {
		t.Fatal("expected error for unknown document")
	}
	appErr, ok := err.(*apperr.Error)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Kind != apperr.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", appErr.Kind)
	}
}

func TestRemainingNormalizesEmail(t *testing.T) {
	ledger := newFakeLedger(gatedDoc)
	svc := newTestService(ledger)
	ctx := context.Background()

	if _, err := svc.RequestDownload(ctx, Request{
		Email: "MiXeD@Case.com", Name: "M", DocumentSlug: "capa-whitepaper",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remaining, err := svc.Remaining(ctx, "mixed@case.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remaining != 2 {
		t.Fatalf("expected 2 remaining, got %d", remaining)
	}
}
