package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

func testQuiz(maxAttempts int) domain.Quiz {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.Quiz{
		ID:          uuid.New(),
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		MaxAttempts: maxAttempts,
	}
}

func TestLedgerCountsAndNumbersAttempts(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()
	quiz := testQuiz(3)
	user := uuid.New()
	score := domain.ScoreResult{TotalScore: 1, TotalPossible: 2}

	for want := 1; want <= 3; want++ {
		attempt, err := ledger.RecordCompleted(ctx, user, quiz, score, quiz.StartTime.Add(time.Minute))
		if err != nil {
			t.Fatalf("attempt %d: %v", want, err)
		}
		if attempt.AttemptNumber != want {
			t.Fatalf("attempt number = %d, want %d", attempt.AttemptNumber, want)
		}
	}

	if _, err := ledger.RecordCompleted(ctx, user, quiz, score, quiz.StartTime.Add(time.Minute)); !errors.Is(err, domain.ErrAttemptLimitExceeded) {
		t.Fatalf("expected ErrAttemptLimitExceeded, got %v", err)
	}
	if count, _ := ledger.AttemptCount(ctx, user, quiz.ID); count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestLedgerExpiryOnlyForUntouchedQuiz(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()
	quiz := testQuiz(1)
	user := uuid.New()

	attempt, err := ledger.RecordExpiry(ctx, user, quiz)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if !attempt.IsCompleted || attempt.TotalScore != 0 || !attempt.StartedAt.Equal(quiz.EndTime) {
		t.Fatalf("bad expiry record: %+v", attempt)
	}
	if _, err := ledger.RecordExpiry(ctx, user, quiz); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Fatalf("second expiry must conflict, got %v", err)
	}
	if has, _ := ledger.HasAnyAttempt(ctx, user, quiz.ID); !has {
		t.Fatal("HasAnyAttempt = false after expiry record")
	}
}

func TestLedgerIsolatesUsersAndQuizzes(t *testing.T) {
	ctx := context.Background()
	ledger := NewAttemptLedger()
	quiz := testQuiz(1)
	score := domain.ScoreResult{}

	if _, err := ledger.RecordCompleted(ctx, uuid.New(), quiz, score, quiz.StartTime); err != nil {
		t.Fatalf("record: %v", err)
	}
	if count, _ := ledger.AttemptCount(ctx, uuid.New(), quiz.ID); count != 0 {
		t.Fatalf("other user's count = %d, want 0", count)
	}
}
