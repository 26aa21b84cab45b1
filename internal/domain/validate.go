package domain

import "fmt"

const (
	// MinOptionsPerQuestion and MaxOptionsPerQuestion bound the option list.
	MinOptionsPerQuestion = 2
	MaxOptionsPerQuestion = 6
)

// Validate checks the structural invariants of a quiz definition: start
// before end, maxAttempts at least 1, and every question carrying positive
// points, 2-6 options and at least one correct option. Failures wrap
// ErrInvalidQuiz.
func (q Quiz) Validate() error {
	if q.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if !q.StartTime.Before(q.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidQuiz)
	}
	if q.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if question.Text == "" {
			return fmt.Errorf("%w: question %d has no text", ErrInvalidQuiz, i+1)
		}
		if question.Points <= 0 {
			return fmt.Errorf("%w: question %d must have positive points", ErrInvalidQuiz, i+1)
		}
		if len(question.Options) < MinOptionsPerQuestion || len(question.Options) > MaxOptionsPerQuestion {
			return fmt.Errorf("%w: question %d must have between %d and %d options",
				ErrInvalidQuiz, i+1, MinOptionsPerQuestion, MaxOptionsPerQuestion)
		}
		if _, ok := question.CorrectOption(); !ok {
			return fmt.Errorf("%w: question %d has no correct option", ErrInvalidQuiz, i+1)
		}
	}
	return nil
}
