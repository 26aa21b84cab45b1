package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

type countingLoader struct {
	inner *QuizStore
	calls atomic.Int64
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	l.calls.Add(1)
	return l.inner.LoadQuiz(ctx, quizID)
}

func TestQuizCacheServesFromCache(t *testing.T) {
	ctx := context.Background()
	quiz := domain.Quiz{ID: uuid.New(), Title: "cached"}
	loader := &countingLoader{inner: NewQuizStore(quiz)}
	cache := NewQuizCache(loader, time.Minute)

	for i := 0; i < 5; i++ {
		got, err := cache.GetQuiz(ctx, quiz.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != "cached" {
			t.Fatalf("got %+v", got)
		}
	}
	if calls := loader.calls.Load(); calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

func TestQuizCacheSingleflightUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	quiz := domain.Quiz{ID: uuid.New()}
	loader := &countingLoader{inner: NewQuizStore(quiz)}
	cache := NewQuizCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetQuiz(ctx, quiz.ID); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := loader.calls.Load(); calls != 1 {
		t.Fatalf("loader called %d times under concurrency, want 1", calls)
	}
}

func TestQuizCacheMissPropagatesNotFound(t *testing.T) {
	cache := NewQuizCache(NewQuizStore(), time.Minute)
	if _, err := cache.GetQuiz(context.Background(), uuid.New()); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	quiz := domain.Quiz{ID: uuid.New(), Title: "v1"}
	store := NewQuizStore(quiz)
	loader := &countingLoader{inner: store}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	quiz.Title = "v2"
	if err := store.UpdateQuiz(ctx, quiz); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := cache.Invalidate(ctx, quiz.ID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	got, err := cache.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if got.Title != "v2" {
		t.Fatalf("stale quiz served after invalidate: %+v", got)
	}
}
