package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	CourseID     uuid.UUID `bun:"course_id,type:uuid"`
	InstructorID uuid.UUID `bun:"instructor_id,type:uuid"`
	Title        string    `bun:"title"`
	Description  string    `bun:"description"`
	StartTime    time.Time `bun:"start_time"`
	EndTime      time.Time `bun:"end_time"`
	MaxAttempts  int       `bun:"max_attempts"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:now()"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID       uuid.UUID `bun:"id,pk,type:uuid"`
	QuizID   uuid.UUID `bun:"quiz_id,type:uuid"`
	Position int       `bun:"position"`
	Text     string    `bun:"text"`
	Points   float64   `bun:"points"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:question_options"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	QuestionID uuid.UUID `bun:"question_id,type:uuid"`
	Position   int       `bun:"position"`
	Text       string    `bun:"text"`
	Label      string    `bun:"label"`
	IsCorrect  bool      `bun:"is_correct"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	QuizID        uuid.UUID  `bun:"quiz_id,type:uuid"`
	UserID        uuid.UUID  `bun:"user_id,type:uuid"`
	AttemptNumber int        `bun:"attempt_number"`
	StartedAt     time.Time  `bun:"started_at"`
	CompletedAt   *time.Time `bun:"completed_at"`
	TotalScore    float64    `bun:"total_score"`
	IsCompleted   bool       `bun:"is_completed"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:user_answers"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	AttemptID        uuid.UUID `bun:"attempt_id,type:uuid"`
	QuestionID       uuid.UUID `bun:"question_id,type:uuid"`
	SelectedOptionID uuid.UUID `bun:"selected_option_id,type:uuid"`
	IsCorrect        bool      `bun:"is_correct"`
	PointsEarned     float64   `bun:"points_earned"`
	AnsweredAt       time.Time `bun:"answered_at"`
}
