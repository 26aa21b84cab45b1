package domain

import (
	"time"

	"github.com/google/uuid"
)

// Option is one selectable answer for a question. The Label is the stable
// selector token shown to learners (e.g. "A", "B").
type Option struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Label     string    `json:"label"`
	IsCorrect bool      `json:"isCorrect"`
}

// Question is a single-best-option question worth a fixed number of points.
type Question struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Points  float64   `json:"points"`
	Options []Option  `json:"options"`
}

// Option returns the option with the given ID, looked up within this
// question only. Ownership checks during scoring go through here rather than
// any global option index.
func (q Question) Option(optionID uuid.UUID) (Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return q.Options[i], true
		}
	}
	return Option{}, false
}

// CorrectOption returns the first option flagged correct.
func (q Question) CorrectOption() (Option, bool) {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return q.Options[i], true
		}
	}
	return Option{}, false
}

// Quiz is a timed assessment owned by a course and an instructor. It is
// immutable once its window has opened.
type Quiz struct {
	ID           uuid.UUID  `json:"id"`
	CourseID     uuid.UUID  `json:"courseId"`
	InstructorID uuid.UUID  `json:"instructorId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      time.Time  `json:"endTime"`
	MaxAttempts  int        `json:"maxAttempts"`
	Questions    []Question `json:"questions"`
}

// Question returns the question with the given ID within this quiz.
func (q Quiz) Question(questionID uuid.UUID) (Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return q.Questions[i], true
		}
	}
	return Question{}, false
}

// TotalPoints is the maximum score achievable across all questions.
func (q Quiz) TotalPoints() float64 {
	total := 0.0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// Sanitized returns a deep copy with every option's IsCorrect flag cleared.
// Served to learners before submission; answers are only revealed afterwards.
func (q Quiz) Sanitized() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		cp := question
		cp.Options = make([]Option, len(question.Options))
		for j, opt := range question.Options {
			opt.IsCorrect = false
			cp.Options[j] = opt
		}
		out.Questions[i] = cp
	}
	return out
}

// Answer is one user's scored selection for one question within an attempt.
type Answer struct {
	ID               uuid.UUID `json:"id"`
	QuestionID       uuid.UUID `json:"questionId"`
	SelectedOptionID uuid.UUID `json:"selectedOptionId"`
	IsCorrect        bool      `json:"isCorrect"`
	PointsEarned     float64   `json:"pointsEarned"`
	AnsweredAt       time.Time `json:"answeredAt"`
}

// Attempt is one scored pass through a quiz by one user. The triple
// (UserID, QuizID, AttemptNumber) is unique; a completed attempt is final.
type Attempt struct {
	ID            uuid.UUID  `json:"id"`
	QuizID        uuid.UUID  `json:"quizId"`
	UserID        uuid.UUID  `json:"userId"`
	AttemptNumber int        `json:"attemptNumber"`
	StartedAt     time.Time  `json:"startedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	TotalScore    float64    `json:"totalScore"`
	IsCompleted   bool       `json:"isCompleted"`
	Answers       []Answer   `json:"answers,omitempty"`
}

// AnswerMap maps question IDs to the option the learner selected.
type AnswerMap map[uuid.UUID]uuid.UUID

// QuizForAttempt is the learner-facing view returned by the eligibility
// check: the sanitized quiz plus how many attempts remain.
type QuizForAttempt struct {
	Quiz         Quiz `json:"quiz"`
	AttemptsUsed int  `json:"attemptsUsed"`
	MaxAttempts  int  `json:"maxAttempts"`
}

// AttemptResult is the outcome of a completed submission. It is safe to
// reveal post-submission and includes the correct option per question.
type AttemptResult struct {
	AttemptID           uuid.UUID       `json:"attemptId"`
	QuizID              uuid.UUID       `json:"quizId"`
	UserID              uuid.UUID       `json:"userId"`
	AttemptNumber       int             `json:"attemptNumber"`
	TotalScore          float64         `json:"totalScore"`
	TotalPossiblePoints float64         `json:"totalPossiblePoints"`
	CompletedAt         time.Time       `json:"completedAt"`
	Questions           []QuestionScore `json:"questions"`
}
