package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"lms-quiz-service/internal/domain"
)

// AttemptLedger is the authoritative attempt record, backed by the
// quiz_attempts and user_answers tables. The UNIQUE (user_id, quiz_id,
// attempt_number) constraint is the serialization point: two concurrent
// writers computing the same attempt number cannot both commit, and the
// loser's violation is translated into a domain error instead of leaking a
// raw storage failure.
type AttemptLedger struct {
	db *bun.DB
}

func NewAttemptLedger(db *bun.DB) *AttemptLedger {
	return &AttemptLedger{db: db}
}

func (l *AttemptLedger) AttemptCount(ctx context.Context, userID, quizID uuid.UUID) (int, error) {
	count, err := l.db.NewSelect().Model((*attemptRow)(nil)).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

func (l *AttemptLedger) HasAnyAttempt(ctx context.Context, userID, quizID uuid.UUID) (bool, error) {
	exists, err := l.db.NewSelect().Model((*attemptRow)(nil)).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check attempts: %w", err)
	}
	return exists, nil
}

// RecordExpiry writes the zero-score attempt marking a missed window,
// stamped at the quiz's end time. Safe to race: the uniqueness constraint
// ensures at most one expiry record ever lands, and losing that race is
// reported as ErrAlreadyCompleted.
func (l *AttemptLedger) RecordExpiry(ctx context.Context, userID uuid.UUID, quiz domain.Quiz) (domain.Attempt, error) {
	endedAt := quiz.EndTime
	row := attemptRow{
		ID:            uuid.New(),
		QuizID:        quiz.ID,
		UserID:        userID,
		AttemptNumber: 1,
		StartedAt:     endedAt,
		CompletedAt:   &endedAt,
		TotalScore:    0,
		IsCompleted:   true,
	}

	err := l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*attemptRow)(nil)).
			Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}
		if count > 0 {
			return domain.ErrAlreadyCompleted
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert expiry attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Attempt{}, domain.ErrAlreadyCompleted
		}
		return domain.Attempt{}, err
	}
	return attemptFromRow(row, nil), nil
}

// RecordCompleted runs the full write sequence as one transaction: count
// existing attempts, begin the next attempt number, persist the answers,
// mark the attempt completed with its final score. A crash midway leaves
// nothing behind; losing the attempt-number race surfaces as
// ErrAlreadyCompleted (the winner finished) or ErrConcurrentConflict (the
// winner is still in flight).
func (l *AttemptLedger) RecordCompleted(ctx context.Context, userID uuid.UUID, quiz domain.Quiz, score domain.ScoreResult, submittedAt time.Time) (domain.Attempt, error) {
	completedAt := submittedAt
	row := attemptRow{
		ID:          uuid.New(),
		QuizID:      quiz.ID,
		UserID:      userID,
		StartedAt:   submittedAt,
		CompletedAt: &completedAt,
		TotalScore:  score.TotalScore,
		IsCompleted: true,
	}
	var answerRows []answerRow

	err := l.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*attemptRow)(nil)).
			Where("user_id = ? AND quiz_id = ?", userID, quiz.ID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}
		if count >= quiz.MaxAttempts {
			return domain.ErrAttemptLimitExceeded
		}
		row.AttemptNumber = count + 1

		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		answerRows = make([]answerRow, 0, len(score.Questions))
		for _, qs := range score.Questions {
			answerRows = append(answerRows, answerRow{
				ID:               uuid.New(),
				AttemptID:        row.ID,
				QuestionID:       qs.QuestionID,
				SelectedOptionID: qs.SelectedOptionID,
				IsCorrect:        qs.IsCorrect,
				PointsEarned:     qs.PointsEarned,
				AnsweredAt:       submittedAt,
			})
		}
		if len(answerRows) > 0 {
			if _, err := tx.NewInsert().Model(&answerRows).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Attempt{}, l.resolveConflict(ctx, userID, quiz.ID, row.AttemptNumber)
		}
		return domain.Attempt{}, err
	}
	return attemptFromRow(row, answerRows), nil
}

func (l *AttemptLedger) AttemptsByUser(ctx context.Context, userID, quizID uuid.UUID) ([]domain.Attempt, error) {
	var rows []attemptRow
	if err := l.db.NewSelect().Model(&rows).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select attempts: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	attemptIDs := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		attemptIDs[i] = row.ID
	}
	var answers []answerRow
	if err := l.db.NewSelect().Model(&answers).
		Where("attempt_id IN (?)", bun.In(attemptIDs)).
		Order("answered_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select answers: %w", err)
	}
	byAttempt := make(map[uuid.UUID][]answerRow)
	for _, a := range answers {
		byAttempt[a.AttemptID] = append(byAttempt[a.AttemptID], a)
	}

	attempts := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, attemptFromRow(row, byAttempt[row.ID]))
	}
	return attempts, nil
}

// resolveConflict maps a lost attempt-number race to the right error kind by
// inspecting the winning row.
func (l *AttemptLedger) resolveConflict(ctx context.Context, userID, quizID uuid.UUID, attemptNumber int) error {
	var winner attemptRow
	err := l.db.NewSelect().Model(&winner).
		Where("user_id = ? AND quiz_id = ? AND attempt_number = ?", userID, quizID, attemptNumber).
		Scan(ctx)
	if err != nil {
		return domain.ErrConcurrentConflict
	}
	if winner.IsCompleted {
		return domain.ErrAlreadyCompleted
	}
	return domain.ErrConcurrentConflict
}

func attemptFromRow(row attemptRow, answers []answerRow) domain.Attempt {
	attempt := domain.Attempt{
		ID:            row.ID,
		QuizID:        row.QuizID,
		UserID:        row.UserID,
		AttemptNumber: row.AttemptNumber,
		StartedAt:     row.StartedAt,
		CompletedAt:   row.CompletedAt,
		TotalScore:    row.TotalScore,
		IsCompleted:   row.IsCompleted,
	}
	for _, a := range answers {
		attempt.Answers = append(attempt.Answers, domain.Answer{
			ID:               a.ID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
			PointsEarned:     a.PointsEarned,
			AnsweredAt:       a.AnsweredAt,
		})
	}
	return attempt
}
