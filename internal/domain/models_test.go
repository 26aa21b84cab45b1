package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSanitizedStripsCorrectFlags(t *testing.T) {
	quiz, _ := twoQuestionQuiz()

	clean := quiz.Sanitized()
	for _, question := range clean.Questions {
		for _, opt := range question.Options {
			if opt.IsCorrect {
				t.Fatalf("sanitized quiz leaked correct flag on option %s", opt.ID)
			}
		}
	}
	// The original must be untouched.
	if _, ok := quiz.Questions[0].CorrectOption(); !ok {
		t.Fatal("sanitizing mutated the source quiz")
	}
}

func TestTotalPoints(t *testing.T) {
	quiz, _ := twoQuestionQuiz()
	if got := quiz.TotalPoints(); got != 5.0 {
		t.Fatalf("TotalPoints = %v, want 5.0", got)
	}
}

func TestQuestionAndOptionLookup(t *testing.T) {
	quiz, ids := twoQuestionQuiz()

	q, ok := quiz.Question(ids["q2"])
	if !ok || q.Points != 3 {
		t.Fatalf("question lookup failed: %+v ok=%v", q, ok)
	}
	if _, ok := quiz.Question(uuid.New()); ok {
		t.Fatal("lookup of unknown question succeeded")
	}
	if _, ok := q.Option(ids["q1-a"]); ok {
		t.Fatal("option from another question resolved through lookup")
	}
}

func TestQuizValidate(t *testing.T) {
	valid, _ := twoQuestionQuiz()
	valid.StartTime = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	valid.EndTime = valid.StartTime.Add(time.Hour)

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Quiz)
	}{
		{"empty title", func(q *Quiz) { q.Title = "" }},
		{"start after end", func(q *Quiz) { q.StartTime = q.EndTime.Add(time.Minute) }},
		{"zero max attempts", func(q *Quiz) { q.MaxAttempts = 0 }},
		{"no questions", func(q *Quiz) { q.Questions = nil }},
		{"zero points", func(q *Quiz) { q.Questions[0].Points = 0 }},
		{"single option", func(q *Quiz) { q.Questions[0].Options = q.Questions[0].Options[:1] }},
		{"no correct option", func(q *Quiz) {
			for i := range q.Questions[0].Options {
				q.Questions[0].Options[i].IsCorrect = false
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz, _ := twoQuestionQuiz()
			quiz.StartTime = valid.StartTime
			quiz.EndTime = valid.EndTime
			tc.mutate(&quiz)
			if err := quiz.Validate(); !errors.Is(err, ErrInvalidQuiz) {
				t.Fatalf("expected ErrInvalidQuiz, got %v", err)
			}
		})
	}
}
