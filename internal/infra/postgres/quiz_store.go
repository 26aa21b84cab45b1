package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"lms-quiz-service/internal/domain"
)

// QuizStore is the instructor write side for quiz definitions. Each
// operation persists or replaces the full Quiz→Question→Option graph in one
// transaction.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) GetQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	var qr quizRow
	err := s.db.NewSelect().Model(&qr).Where("id = ?", quizID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}

	var questionRows []questionRow
	if err := s.db.NewSelect().Model(&questionRows).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("select questions: %w", err)
	}

	quiz := domain.Quiz{
		ID:           qr.ID,
		CourseID:     qr.CourseID,
		InstructorID: qr.InstructorID,
		Title:        qr.Title,
		Description:  qr.Description,
		StartTime:    qr.StartTime,
		EndTime:      qr.EndTime,
		MaxAttempts:  qr.MaxAttempts,
	}
	if len(questionRows) == 0 {
		return quiz, nil
	}

	questionIDs := make([]uuid.UUID, len(questionRows))
	index := make(map[uuid.UUID]int, len(questionRows))
	for i, row := range questionRows {
		questionIDs[i] = row.ID
		index[row.ID] = i
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:     row.ID,
			Text:   row.Text,
			Points: row.Points,
		})
	}

	var optionRows []optionRow
	if err := s.db.NewSelect().Model(&optionRows).
		Where("question_id IN (?)", bun.In(questionIDs)).
		Order("position ASC").
		Scan(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("select options: %w", err)
	}
	for _, row := range optionRows {
		if i, ok := index[row.QuestionID]; ok {
			quiz.Questions[i].Options = append(quiz.Questions[i].Options, domain.Option{
				ID:        row.ID,
				Text:      row.Text,
				Label:     row.Label,
				IsCorrect: row.IsCorrect,
			})
		}
	}
	return quiz, nil
}

func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		qr := quizRow{
			ID:           quiz.ID,
			CourseID:     quiz.CourseID,
			InstructorID: quiz.InstructorID,
			Title:        quiz.Title,
			Description:  quiz.Description,
			StartTime:    quiz.StartTime,
			EndTime:      quiz.EndTime,
			MaxAttempts:  quiz.MaxAttempts,
		}
		if _, err := tx.NewInsert().Model(&qr).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		return insertQuestionGraph(ctx, tx, quiz)
	})
}

func (s *QuizStore) UpdateQuiz(ctx context.Context, quiz domain.Quiz) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().Model((*quizRow)(nil)).
			Set("title = ?", quiz.Title).
			Set("description = ?", quiz.Description).
			Set("start_time = ?", quiz.StartTime).
			Set("end_time = ?", quiz.EndTime).
			Set("max_attempts = ?", quiz.MaxAttempts).
			Where("id = ?", quiz.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrQuizNotFound
		}

		// Replace the question graph wholesale; options go with their
		// questions by cascade.
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).
			Where("quiz_id = ?", quiz.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		return insertQuestionGraph(ctx, tx, quiz)
	})
}

func (s *QuizStore) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).
		Where("id = ?", quizID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func insertQuestionGraph(ctx context.Context, tx bun.Tx, quiz domain.Quiz) error {
	if len(quiz.Questions) == 0 {
		return nil
	}
	questionRows := make([]questionRow, 0, len(quiz.Questions))
	var optionRows []optionRow
	for pos, question := range quiz.Questions {
		questionRows = append(questionRows, questionRow{
			ID:       question.ID,
			QuizID:   quiz.ID,
			Position: pos,
			Text:     question.Text,
			Points:   question.Points,
		})
		for optPos, opt := range question.Options {
			optionRows = append(optionRows, optionRow{
				ID:         opt.ID,
				QuestionID: question.ID,
				Position:   optPos,
				Text:       opt.Text,
				Label:      opt.Label,
				IsCorrect:  opt.IsCorrect,
			})
		}
	}
	if _, err := tx.NewInsert().Model(&questionRows).Exec(ctx); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	if len(optionRows) > 0 {
		if _, err := tx.NewInsert().Model(&optionRows).Exec(ctx); err != nil {
			return fmt.Errorf("insert options: %w", err)
		}
	}
	return nil
}
