package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

type ledgerKey struct {
	userID uuid.UUID
	quizID uuid.UUID
}

// AttemptLedger is an in-memory implementation of app.AttemptLedger. A
// single mutex plays the role the storage transaction plays in the postgres
// ledger: counting and appending are indivisible, so attempt numbers stay
// unique per (user, quiz).
type AttemptLedger struct {
	mu       sync.Mutex
	attempts map[ledgerKey][]domain.Attempt
}

func NewAttemptLedger() *AttemptLedger {
	return &AttemptLedger{attempts: make(map[ledgerKey][]domain.Attempt)}
}

func (l *AttemptLedger) AttemptCount(_ context.Context, userID, quizID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts[ledgerKey{userID, quizID}]), nil
}

func (l *AttemptLedger) HasAnyAttempt(_ context.Context, userID, quizID uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts[ledgerKey{userID, quizID}]) > 0, nil
}

func (l *AttemptLedger) RecordExpiry(_ context.Context, userID uuid.UUID, quiz domain.Quiz) (domain.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey{userID, quiz.ID}
	if len(l.attempts[key]) > 0 {
		return domain.Attempt{}, domain.ErrAlreadyCompleted
	}

	endedAt := quiz.EndTime
	attempt := domain.Attempt{
		ID:            uuid.New(),
		QuizID:        quiz.ID,
		UserID:        userID,
		AttemptNumber: 1,
		StartedAt:     endedAt,
		CompletedAt:   &endedAt,
		TotalScore:    0,
		IsCompleted:   true,
	}
	l.attempts[key] = append(l.attempts[key], attempt)
	return attempt, nil
}

func (l *AttemptLedger) RecordCompleted(_ context.Context, userID uuid.UUID, quiz domain.Quiz, score domain.ScoreResult, submittedAt time.Time) (domain.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey{userID, quiz.ID}
	used := len(l.attempts[key])
	if used >= quiz.MaxAttempts {
		return domain.Attempt{}, domain.ErrAttemptLimitExceeded
	}

	completedAt := submittedAt
	attempt := domain.Attempt{
		ID:            uuid.New(),
		QuizID:        quiz.ID,
		UserID:        userID,
		AttemptNumber: used + 1,
		StartedAt:     submittedAt,
		CompletedAt:   &completedAt,
		TotalScore:    score.TotalScore,
		IsCompleted:   true,
		Answers:       answersFromScore(score, submittedAt),
	}
	l.attempts[key] = append(l.attempts[key], attempt)
	return attempt, nil
}

func (l *AttemptLedger) AttemptsByUser(_ context.Context, userID, quizID uuid.UUID) ([]domain.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.attempts[ledgerKey{userID, quizID}]
	out := make([]domain.Attempt, len(src))
	copy(out, src)
	return out, nil
}

func answersFromScore(score domain.ScoreResult, answeredAt time.Time) []domain.Answer {
	answers := make([]domain.Answer, 0, len(score.Questions))
	for _, qs := range score.Questions {
		answers = append(answers, domain.Answer{
			ID:               uuid.New(),
			QuestionID:       qs.QuestionID,
			SelectedOptionID: qs.SelectedOptionID,
			IsCorrect:        qs.IsCorrect,
			PointsEarned:     qs.PointsEarned,
			AnsweredAt:       answeredAt,
		})
	}
	return answers
}
