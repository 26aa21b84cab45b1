package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

// QuizStore persists quiz definitions (instructor write side).
type QuizStore interface {
	GetQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	// UpdateQuiz replaces the full question graph of an existing quiz.
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) error
	// DeleteQuiz removes the quiz and, by cascade, its questions and options.
	DeleteQuiz(ctx context.Context, quizID uuid.UUID) error
}

// QuizCacheInvalidator evicts a cached quiz definition. Edits go through the
// store, so the read-side cache must be told about them; a definition cached
// just before an edit would otherwise serve the superseded question graph
// until its TTL runs out.
type QuizCacheInvalidator interface {
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

// QuizAdminService covers the instructor-facing lifecycle of a quiz: created
// before its window opens, editable until then, frozen afterwards.
type QuizAdminService struct {
	store QuizStore
	cache QuizCacheInvalidator
	clock func() time.Time
}

func NewQuizAdminService(store QuizStore, cache QuizCacheInvalidator) *QuizAdminService {
	return NewQuizAdminServiceWithClock(store, cache, time.Now)
}

// NewQuizAdminServiceWithClock is test-only for deterministic timestamps.
func NewQuizAdminServiceWithClock(store QuizStore, cache QuizCacheInvalidator, clock func() time.Time) *QuizAdminService {
	return &QuizAdminService{store: store, cache: cache, clock: clock}
}

// CreateQuiz validates the definition, assigns identifiers to the quiz and
// its question graph, and persists it.
func (s *QuizAdminService) CreateQuiz(ctx context.Context, instructorID uuid.UUID, quiz domain.Quiz) (domain.Quiz, error) {
	quiz.ID = uuid.New()
	quiz.InstructorID = instructorID
	assignQuestionIDs(&quiz)

	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// UpdateQuiz replaces the quiz definition. Rejected once the window has
// opened: a published quiz is immutable.
func (s *QuizAdminService) UpdateQuiz(ctx context.Context, instructorID, quizID uuid.UUID, quiz domain.Quiz) (domain.Quiz, error) {
	existing, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if existing.InstructorID != instructorID {
		return domain.Quiz{}, domain.ErrNotQuizOwner
	}
	if domain.ClassifyWindow(s.clock(), existing) != domain.WindowNotStarted {
		return domain.Quiz{}, domain.ErrQuizStarted
	}

	quiz.ID = existing.ID
	quiz.CourseID = existing.CourseID
	quiz.InstructorID = existing.InstructorID
	assignQuestionIDs(&quiz)

	if err := quiz.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	if err := s.store.UpdateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.invalidate(ctx, quiz.ID)
	return quiz, nil
}

// GetQuiz returns the owner's full quiz definition, correct flags included.
func (s *QuizAdminService) GetQuiz(ctx context.Context, instructorID, quizID uuid.UUID) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.InstructorID != instructorID {
		return domain.Quiz{}, domain.ErrNotQuizOwner
	}
	return quiz, nil
}

// DeleteQuiz removes an unpublished quiz and all its descendants.
func (s *QuizAdminService) DeleteQuiz(ctx context.Context, instructorID, quizID uuid.UUID) error {
	existing, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if existing.InstructorID != instructorID {
		return domain.ErrNotQuizOwner
	}
	if domain.ClassifyWindow(s.clock(), existing) != domain.WindowNotStarted {
		return domain.ErrQuizStarted
	}
	if err := s.store.DeleteQuiz(ctx, quizID); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	return nil
}

// invalidate evicts the cached definition after a successful write. Eviction
// failure leaves the write intact and is only logged; the next edit or TTL
// expiry clears the entry.
func (s *QuizAdminService) invalidate(ctx context.Context, quizID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		log.Printf("invalidate quiz %s: %v", quizID, err)
	}
}

func assignQuestionIDs(quiz *domain.Quiz) {
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == uuid.Nil {
			quiz.Questions[i].ID = uuid.New()
		}
		for j := range quiz.Questions[i].Options {
			if quiz.Questions[i].Options[j].ID == uuid.Nil {
				quiz.Questions[i].Options[j].ID = uuid.New()
			}
		}
	}
}
