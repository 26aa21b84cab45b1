package http

import (
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

type createQuizRequest struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	CourseID    uuid.UUID         `json:"courseId" validate:"required"`
	StartTime   time.Time         `json:"startTime" validate:"required"`
	EndTime     time.Time         `json:"endTime" validate:"required"`
	MaxAttempts int               `json:"maxAttempts" validate:"min=1"`
	Questions   []questionRequest `json:"questions" validate:"required,min=1,dive"`
}

type questionRequest struct {
	Text    string          `json:"text" validate:"required"`
	Points  float64         `json:"points" validate:"gt=0"`
	Options []optionRequest `json:"options" validate:"min=2,max=6,dive"`
}

type optionRequest struct {
	Text      string `json:"text" validate:"required"`
	Label     string `json:"label" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

func (r createQuizRequest) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		Title:       r.Title,
		Description: r.Description,
		CourseID:    r.CourseID,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		MaxAttempts: r.MaxAttempts,
	}
	for _, q := range r.Questions {
		question := domain.Question{Text: q.Text, Points: q.Points}
		for _, opt := range q.Options {
			question.Options = append(question.Options, domain.Option{
				Text:      opt.Text,
				Label:     opt.Label,
				IsCorrect: opt.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz
}

type submitAnswersRequest struct {
	// question ID -> selected option ID
	Answers map[uuid.UUID]uuid.UUID `json:"answers" validate:"required,min=1"`
}

// eligibleQuizResponse is the learner-facing quiz view. Option correctness
// is omitted entirely rather than zeroed.
type eligibleQuizResponse struct {
	Quiz         quizView `json:"quiz"`
	AttemptsUsed int      `json:"attemptsUsed"`
	MaxAttempts  int      `json:"maxAttempts"`
}

type quizView struct {
	ID          uuid.UUID      `json:"id"`
	CourseID    uuid.UUID      `json:"courseId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime"`
	MaxAttempts int            `json:"maxAttempts"`
	TotalPoints float64        `json:"totalPoints"`
	Questions   []questionView `json:"questions"`
}

type questionView struct {
	ID      uuid.UUID    `json:"id"`
	Text    string       `json:"text"`
	Points  float64      `json:"points"`
	Options []optionView `json:"options"`
}

type optionView struct {
	ID    uuid.UUID `json:"id"`
	Text  string    `json:"text"`
	Label string    `json:"label"`
}

func eligibleQuizFromDomain(view domain.QuizForAttempt) eligibleQuizResponse {
	quiz := quizView{
		ID:          view.Quiz.ID,
		CourseID:    view.Quiz.CourseID,
		Title:       view.Quiz.Title,
		Description: view.Quiz.Description,
		StartTime:   view.Quiz.StartTime,
		EndTime:     view.Quiz.EndTime,
		MaxAttempts: view.Quiz.MaxAttempts,
		TotalPoints: view.Quiz.TotalPoints(),
	}
	for _, question := range view.Quiz.Questions {
		qv := questionView{ID: question.ID, Text: question.Text, Points: question.Points}
		for _, opt := range question.Options {
			qv.Options = append(qv.Options, optionView{ID: opt.ID, Text: opt.Text, Label: opt.Label})
		}
		quiz.Questions = append(quiz.Questions, qv)
	}
	return eligibleQuizResponse{
		Quiz:         quiz,
		AttemptsUsed: view.AttemptsUsed,
		MaxAttempts:  view.MaxAttempts,
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
