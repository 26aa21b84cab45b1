package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

// QuizStore is an in-memory quiz definition store. It backs tests and the
// no-database demo mode, and doubles as a QuizLoader for the caches.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[uuid.UUID]domain.Quiz
}

func NewQuizStore(seed ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[uuid.UUID]domain.Quiz)}
	for _, quiz := range seed {
		s.quizzes[quiz.ID] = quiz
	}
	return s
}

func (s *QuizStore) GetQuiz(_ context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// LoadQuiz satisfies the loader interface used by the quiz caches.
func (s *QuizStore) LoadQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	return s.GetQuiz(ctx, quizID)
}

func (s *QuizStore) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *QuizStore) UpdateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = quiz
	return nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, quizID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, quizID)
	return nil
}
