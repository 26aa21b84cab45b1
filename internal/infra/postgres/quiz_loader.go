package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lms-quiz-service/internal/domain"
)

// QuizLoader reads full quiz definitions from Postgres over a pgx pool. It
// backs the quiz caches on the read path of the attempt engine.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	var quiz domain.Quiz
	var id, courseID, instructorID string

	err := l.pool.QueryRow(ctx, `
		SELECT id::text, course_id::text, instructor_id::text,
		       title, description, start_time, end_time, max_attempts
		FROM quizzes WHERE id = $1`, quizID).
		Scan(&id, &courseID, &instructorID,
			&quiz.Title, &quiz.Description, &quiz.StartTime, &quiz.EndTime, &quiz.MaxAttempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if quiz.ID, err = uuid.Parse(id); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse quiz id: %w", err)
	}
	if quiz.CourseID, err = uuid.Parse(courseID); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse course id: %w", err)
	}
	if quiz.InstructorID, err = uuid.Parse(instructorID); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse instructor id: %w", err)
	}

	if quiz.Questions, err = l.loadQuestions(ctx, quizID); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (l *QuizLoader) loadQuestions(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id::text, text, points
		FROM questions WHERE quiz_id = $1
		ORDER BY position`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var q domain.Question
		var id string
		if err := rows.Scan(&id, &q.Text, &q.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if q.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse question id: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	optRows, err := l.pool.Query(ctx, `
		SELECT o.id::text, o.question_id::text, o.text, o.label, o.is_correct
		FROM question_options o
		JOIN questions q ON q.id = o.question_id
		WHERE q.quiz_id = $1
		ORDER BY q.position, o.position`, quizID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt domain.Option
		var id, questionID string
		if err := optRows.Scan(&id, &questionID, &opt.Text, &opt.Label, &opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if opt.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse option id: %w", err)
		}
		qid, err := uuid.Parse(questionID)
		if err != nil {
			return nil, fmt.Errorf("parse option question id: %w", err)
		}
		if i, ok := index[qid]; ok {
			questions[i].Options = append(questions[i].Options, opt)
		}
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	return questions, nil
}
