package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

func TestCommentService_AllowsUpToThresholdPlusOne(t *testing.T) {
	storage := newMockStorage()
	persist := &commentRecorder{}
	observer := &countingObserver{results: map[string]int{}}
	service := newTestService(t, storage, persist, Config{Rule: domain.Rule{Threshold: 3}}, WithObserver(observer))

	ctx := context.Background()

	for i := 0; i < 4; i++ {
		decision, err := service.Allow(ctx, "Tom", "Check it out")
		if err != nil {
			t.Fatalf("unexpected error at attempt %d: %v", i+1, err)
		}
		if decision.Count != int64(i+1) {
			t.Fatalf("expected count %d, got %d", i+1, decision.Count)
		}
		if decision.CommentID == "" {
			t.Fatalf("expected comment id on attempt %d", i+1)
		}
	}

	decision, err := service.Allow(ctx, "Tom", "Check it out")
	if !domain.IsRateLimitExceeded(err) {
		t.Fatalf("expected rate limit error, got decision=%+v err=%v", decision, err)
	}
	if decision.Count != 4 {
		t.Fatalf("expected count to stay at 4, got %d", decision.Count)
	}

	if observer.results[ResultAllowed] != 4 || observer.results[ResultRejected] != 1 {
		t.Fatalf("unexpected observed results: %v", observer.results)
	}
	if observer.closed != 1 {
		t.Fatalf("expected limiter closed once, got %d", observer.closed)
	}
	if len(persist.comments) != 4 || persist.comments[0].Author != "Tom" {
		t.Fatalf("expected 4 comments by Tom, got %+v", persist.comments)
	}
}

func TestCommentService_AuthorsAreIsolated(t *testing.T) {
	storage := newMockStorage()
	service := newTestService(t, storage, &commentRecorder{}, Config{Rule: domain.Rule{Threshold: 0}})

	ctx := context.Background()

	if _, err := service.Allow(ctx, "Tom", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Allow(ctx, "Tom", "hi"); !domain.IsRateLimitExceeded(err) {
		t.Fatalf("expected Tom to be closed, got %v", err)
	}
	if _, err := service.Allow(ctx, "dave", "hi"); err != nil {
		t.Fatalf("dave should be unaffected, got %v", err)
	}
}

func TestCommentService_KeysAreCaseInsensitive(t *testing.T) {
	storage := newMockStorage()
	service := newTestService(t, storage, &commentRecorder{}, Config{Rule: domain.Rule{Threshold: 0}})

	ctx := context.Background()

	if _, err := service.Allow(ctx, " Tom ", "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Allow(ctx, "TOM", "hi"); !domain.IsRateLimitExceeded(err) {
		t.Fatalf("expected shared counter for Tom, got %v", err)
	}
	if storage.counts["ratelimit:comment:tom"] != 1 {
		t.Fatalf("expected stored count 1, got %v", storage.counts)
	}
}

func TestCommentService_RejectsInvalidRequests(t *testing.T) {
	observer := &countingObserver{results: map[string]int{}}
	service := newTestService(t, newMockStorage(), &commentRecorder{}, Config{Rule: domain.Rule{Threshold: 3}}, WithObserver(observer))

	ctx := context.Background()

	if _, err := service.Allow(ctx, "  ", "hi"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for empty author, got %v", err)
	}
	if _, err := service.Allow(ctx, "Tom", " "); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for empty text, got %v", err)
	}
	if observer.results[ResultInvalid] != 2 {
		t.Fatalf("expected 2 invalid results, got %v", observer.results)
	}
}

func TestCommentService_PersistFailure(t *testing.T) {
	storage := newMockStorage()
	failing := ports.PersistFunc[domain.Comment](func(context.Context, domain.Identity, domain.Comment) error {
		return errors.New("disk full")
	})
	observer := &countingObserver{results: map[string]int{}}
	service := newTestService(t, storage, failing, Config{Rule: domain.Rule{Threshold: 3}}, WithObserver(observer))

	_, err := service.Allow(context.Background(), "Tom", "hi")
	if !domain.IsPersistError(err) {
		t.Fatalf("expected persist error, got %v", err)
	}
	if storage.counts["ratelimit:comment:tom"] != 0 {
		t.Fatalf("counter must not advance on persist failure, got %d", storage.counts["ratelimit:comment:tom"])
	}
	if observer.results[ResultPersistError] != 1 {
		t.Fatalf("expected persist_error result, got %v", observer.results)
	}
}

func TestCommentService_UsesClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	persist := &commentRecorder{}
	service := newTestService(t, newMockStorage(), persist, Config{Rule: domain.Rule{Threshold: 1}}, WithClock(func() time.Time { return fixed }))

	if _, err := service.Allow(context.Background(), "dave", "check this out"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !persist.comments[0].CreatedAt.Equal(fixed) {
		t.Fatalf("expected created_at %v, got %v", fixed, persist.comments[0].CreatedAt)
	}
	if persist.comments[0].Text != "check this out" {
		t.Fatalf("unexpected text %q", persist.comments[0].Text)
	}
}

func TestNewCommentService_Validation(t *testing.T) {
	if _, err := NewCommentService(nil, &commentRecorder{}, Config{}); err == nil {
		t.Fatalf("expected error for nil storage")
	}
	if _, err := NewCommentService(newMockStorage(), nil, Config{}); err == nil {
		t.Fatalf("expected error for nil persister")
	}
	if _, err := NewCommentService(newMockStorage(), &commentRecorder{}, Config{Rule: domain.Rule{Threshold: -2}}); err == nil {
		t.Fatalf("expected error for negative threshold")
	}
}

func newTestService(t *testing.T, storage ports.Storage, persist ports.Persister[domain.Comment], cfg Config, opts ...ServiceOption) *CommentService {
	t.Helper()
	service, err := NewCommentService(storage, persist, cfg, opts...)
	if err != nil {
		t.Fatalf("failed to create comment service: %v", err)
	}
	return service
}

type commentRecorder struct {
	comments []domain.Comment
}

func (c *commentRecorder) Persist(_ context.Context, _ domain.Identity, comment domain.Comment) error {
	c.comments = append(c.comments, comment)
	return nil
}

type countingObserver struct {
	results map[string]int
	closed  int
}

func (o *countingObserver) ObserveInvocation(result string) { o.results[result]++ }
func (o *countingObserver) ObserveClosed()                  { o.closed++ }

func TestCommentService_DoesNotRetainIdleAuthors(t *testing.T) {
	service := newTestService(t, newMockStorage(), &commentRecorder{}, Config{Rule: domain.Rule{Threshold: 3}})
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		if _, err := service.Allow(ctx, domain.Identity(fmt.Sprintf("author-%d", i)), "hi"); err != nil {
			t.Fatalf("unexpected error for author %d: %v", i, err)
		}
	}

	if got := service.tracked(); got != 0 {
		t.Fatalf("expected no tracked authors after requests finished, got %d", got)
	}
}

func TestCommentService_LimitSurvivesRelease(t *testing.T) {
	storage := newMockStorage()
	service := newTestService(t, storage, &commentRecorder{}, Config{Rule: domain.Rule{Threshold: 1}})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := service.Allow(ctx, "Tom", "hi"); err != nil {
			t.Fatalf("unexpected error at attempt %d: %v", i+1, err)
		}
	}
	if _, err := service.Allow(ctx, "Tom", "hi"); !domain.IsRateLimitExceeded(err) {
		t.Fatalf("expected rate limit error after release, got %v", err)
	}
	if got := service.tracked(); got != 0 {
		t.Fatalf("expected no tracked authors, got %d", got)
	}
}

func TestCommentService_KeepsAuthorWithPendingIncrements(t *testing.T) {
	storage := &failingIncrementStorage{err: errors.New("redis READONLY")}
	persist := &commentRecorder{}
	service := newTestService(t, storage, persist, Config{Rule: domain.Rule{Threshold: 3}})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, _ = service.Allow(ctx, "Tom", "hi")
	}

	if len(persist.comments) != 4 {
		t.Fatalf("expected 4 persisted comments, got %d", len(persist.comments))
	}
	if got := service.tracked(); got != 1 {
		t.Fatalf("expected Tom to stay tracked while increments are pending, got %d", got)
	}
}
