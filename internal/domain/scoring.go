package domain

import (
	"sort"

	"github.com/google/uuid"
)

// QuestionScore is the scored outcome for a single question.
type QuestionScore struct {
	QuestionID       uuid.UUID `json:"questionId"`
	SelectedOptionID uuid.UUID `json:"selectedOptionId"`
	CorrectOptionID  uuid.UUID `json:"correctOptionId"`
	IsCorrect        bool      `json:"isCorrect"`
	PointsEarned     float64   `json:"pointsEarned"`
	Points           float64   `json:"points"`
}

// ScoreResult aggregates per-question outcomes into a total. TotalPossible
// is the sum of all question points, for percentage reporting by callers.
type ScoreResult struct {
	TotalScore    float64
	TotalPossible float64
	Questions     []QuestionScore
}

// ScoreAttempt validates a learner's answer map against the quiz definition
// and computes the score. Validation order: completeness first (every
// question must be answered), then option ownership (the selected option
// must belong to that specific question). Keys in the answer map that match
// no question in the quiz are ignored. No partial credit, no negative
// scoring. Pure: no storage access, no clock.
func ScoreAttempt(quiz Quiz, answers AnswerMap) (ScoreResult, error) {
	var missing []uuid.UUID
	for _, question := range quiz.Questions {
		if _, ok := answers[question.ID]; !ok {
			missing = append(missing, question.ID)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool {
			return missing[i].String() < missing[j].String()
		})
		return ScoreResult{}, &IncompleteSubmissionError{Missing: missing}
	}

	result := ScoreResult{
		Questions: make([]QuestionScore, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		selected, ok := question.Option(answers[question.ID])
		if !ok {
			return ScoreResult{}, &InvalidOptionReferenceError{
				QuestionID: question.ID,
				OptionID:   answers[question.ID],
			}
		}

		earned := 0.0
		if selected.IsCorrect {
			earned = question.Points
		}
		correct, _ := question.CorrectOption()
		result.Questions = append(result.Questions, QuestionScore{
			QuestionID:       question.ID,
			SelectedOptionID: selected.ID,
			CorrectOptionID:  correct.ID,
			IsCorrect:        selected.IsCorrect,
			PointsEarned:     earned,
			Points:           question.Points,
		})
		result.TotalScore += earned
		result.TotalPossible += question.Points
	}
	return result, nil
}
