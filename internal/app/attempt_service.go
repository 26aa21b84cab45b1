package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

// QuizRepository loads full quiz definitions, correct flags included. The
// orchestrator is responsible for sanitizing before anything reaches a
// learner pre-submission.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error)
}

// AttemptLedger is the authoritative record of attempts per (user, quiz)
// pair. Implementations enforce the (user, quiz, attempt-number) and
// (attempt, question) uniqueness constraints at the storage boundary and
// perform each write as one atomic unit.
type AttemptLedger interface {
	AttemptCount(ctx context.Context, userID, quizID uuid.UUID) (int, error)
	HasAnyAttempt(ctx context.Context, userID, quizID uuid.UUID) (bool, error)
	// RecordExpiry creates a zero-score completed attempt stamped at the
	// quiz's end time, marking a missed window.
	RecordExpiry(ctx context.Context, userID uuid.UUID, quiz domain.Quiz) (domain.Attempt, error)
	// RecordCompleted begins the next attempt and persists its answers and
	// final score in a single transaction. Returns
	// domain.ErrAttemptLimitExceeded when no attempts remain,
	// domain.ErrAlreadyCompleted when the computed attempt number collides
	// with an already-scored attempt, and domain.ErrConcurrentConflict when
	// a storage-level race was lost against an unfinished writer.
	RecordCompleted(ctx context.Context, userID uuid.UUID, quiz domain.Quiz, score domain.ScoreResult, submittedAt time.Time) (domain.Attempt, error)
	AttemptsByUser(ctx context.Context, userID, quizID uuid.UUID) ([]domain.Attempt, error)
}

// AttemptService orchestrates the two externally visible operations of the
// attempt engine: eligibility inspection and answer submission. It is the
// only layer that retries (one retry, ErrConcurrentConflict only) or that
// translates ledger conflicts into user-facing error kinds.
type AttemptService struct {
	quizzes QuizRepository
	ledger  AttemptLedger
	feed    *ResultsFeed
}

func NewAttemptService(quizzes QuizRepository, ledger AttemptLedger, feed *ResultsFeed) *AttemptService {
	return &AttemptService{quizzes: quizzes, ledger: ledger, feed: feed}
}

// GetEligibleQuiz reports whether the user may attempt the quiz at the given
// instant and, if so, returns the quiz with correct flags stripped. A closed
// window is recorded as an expiry attempt exactly once; repeated calls after
// expiry never create a second record.
func (s *AttemptService) GetEligibleQuiz(ctx context.Context, quizID, userID uuid.UUID, now time.Time) (domain.QuizForAttempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizForAttempt{}, err
	}

	switch domain.ClassifyWindow(now, quiz) {
	case domain.WindowNotStarted:
		return domain.QuizForAttempt{}, domain.ErrNotStarted
	case domain.WindowExpired:
		if err := s.recordExpiryOnce(ctx, userID, quiz); err != nil {
			return domain.QuizForAttempt{}, err
		}
		return domain.QuizForAttempt{}, domain.ErrExpired
	}

	used, err := s.ledger.AttemptCount(ctx, userID, quizID)
	if err != nil {
		return domain.QuizForAttempt{}, err
	}
	if used >= quiz.MaxAttempts {
		return domain.QuizForAttempt{}, domain.ErrAlreadyAttempted
	}

	return domain.QuizForAttempt{
		Quiz:         quiz.Sanitized(),
		AttemptsUsed: used,
		MaxAttempts:  quiz.MaxAttempts,
	}, nil
}

// SubmitAnswers validates and scores a submission, persisting the attempt
// and its answers atomically. The window is re-classified at write time; a
// quiz fetched while open but submitted after its end fails with ErrExpired.
func (s *AttemptService) SubmitAnswers(ctx context.Context, quizID, userID uuid.UUID, answers domain.AnswerMap, now time.Time) (domain.AttemptResult, error) {
	result, err := s.submit(ctx, quizID, userID, answers, now)
	if errors.Is(err, domain.ErrConcurrentConflict) {
		// Lost a storage race against an unfinished writer. Re-read state and
		// try once more; any further conflict is surfaced as-is.
		result, err = s.submit(ctx, quizID, userID, answers, now)
	}
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if s.feed != nil {
		s.feed.Publish(result)
	}
	return result, nil
}

func (s *AttemptService) submit(ctx context.Context, quizID, userID uuid.UUID, answers domain.AnswerMap, now time.Time) (domain.AttemptResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	switch domain.ClassifyWindow(now, quiz) {
	case domain.WindowNotStarted:
		return domain.AttemptResult{}, domain.ErrNotStarted
	case domain.WindowExpired:
		if err := s.recordExpiryOnce(ctx, userID, quiz); err != nil {
			return domain.AttemptResult{}, err
		}
		return domain.AttemptResult{}, domain.ErrExpired
	}

	// Attempt ceiling is checked before any scoring runs; the ledger
	// re-checks it inside the write transaction.
	used, err := s.ledger.AttemptCount(ctx, userID, quizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if used >= quiz.MaxAttempts {
		return domain.AttemptResult{}, domain.ErrAttemptLimitExceeded
	}

	score, err := domain.ScoreAttempt(quiz, answers)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	attempt, err := s.ledger.RecordCompleted(ctx, userID, quiz, score, now)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	completedAt := now
	if attempt.CompletedAt != nil {
		completedAt = *attempt.CompletedAt
	}
	return domain.AttemptResult{
		AttemptID:           attempt.ID,
		QuizID:              quiz.ID,
		UserID:              userID,
		AttemptNumber:       attempt.AttemptNumber,
		TotalScore:          score.TotalScore,
		TotalPossiblePoints: score.TotalPossible,
		CompletedAt:         completedAt,
		Questions:           score.Questions,
	}, nil
}

// AttemptHistory returns the user's attempts for a quiz, answers included.
func (s *AttemptService) AttemptHistory(ctx context.Context, quizID, userID uuid.UUID) ([]domain.Attempt, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.ledger.AttemptsByUser(ctx, userID, quizID)
}

// recordExpiryOnce lazily records a missed window. A learner's first touch
// of an expired quiz writes the zero-score attempt; every later touch finds
// the existing record and writes nothing.
func (s *AttemptService) recordExpiryOnce(ctx context.Context, userID uuid.UUID, quiz domain.Quiz) error {
	has, err := s.ledger.HasAnyAttempt(ctx, userID, quiz.ID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.ledger.RecordExpiry(ctx, userID, quiz)
	if errors.Is(err, domain.ErrConcurrentConflict) || errors.Is(err, domain.ErrAlreadyCompleted) {
		// Another caller recorded the expiry first; the outcome is the same.
		return nil
	}
	return err
}
