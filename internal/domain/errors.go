package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNotStarted is returned when the quiz window has not opened yet.
	ErrNotStarted = errors.New("quiz has not started")
	// ErrExpired is returned when the quiz window has already closed.
	ErrExpired = errors.New("quiz window has expired")
	// ErrAttemptLimitExceeded is returned when a user has used up maxAttempts.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	// ErrAlreadyAttempted is returned by the eligibility check once no
	// attempts remain for this user and quiz.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrAlreadyCompleted is returned when a submission races against an
	// attempt number that has already been scored.
	ErrAlreadyCompleted = errors.New("attempt already completed")
	// ErrIncompleteSubmission is returned when the answer map is missing
	// one or more questions. Partial submissions are never partially scored.
	ErrIncompleteSubmission = errors.New("incomplete submission")
	// ErrInvalidOptionReference is returned when a selected option does not
	// belong to the question it was submitted for.
	ErrInvalidOptionReference = errors.New("option does not belong to question")
	// ErrConcurrentConflict is returned when a storage-level race was lost.
	// The orchestrator retries this once after re-reading state.
	ErrConcurrentConflict = errors.New("concurrent attempt conflict")
	// ErrQuizStarted rejects edits or deletes once the window has opened.
	ErrQuizStarted = errors.New("quiz has already started")
	// ErrNotQuizOwner rejects instructor operations by anyone but the owner.
	ErrNotQuizOwner = errors.New("not the quiz owner")
	// ErrInvalidQuiz wraps quiz definition validation failures.
	ErrInvalidQuiz = errors.New("invalid quiz definition")
)

// IncompleteSubmissionError names the questions absent from the answer map.
type IncompleteSubmissionError struct {
	Missing []uuid.UUID
}

func (e *IncompleteSubmissionError) Error() string {
	return fmt.Sprintf("incomplete submission: %d unanswered question(s)", len(e.Missing))
}

func (e *IncompleteSubmissionError) Is(target error) bool {
	return target == ErrIncompleteSubmission
}

// InvalidOptionReferenceError identifies the offending question/option pair.
type InvalidOptionReferenceError struct {
	QuestionID uuid.UUID
	OptionID   uuid.UUID
}

func (e *InvalidOptionReferenceError) Error() string {
	return fmt.Sprintf("option %s does not belong to question %s", e.OptionID, e.QuestionID)
}

func (e *InvalidOptionReferenceError) Is(target error) bool {
	return target == ErrInvalidOptionReference
}
