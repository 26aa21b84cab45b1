package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"lms-quiz-service/internal/domain"
)

// QuizLoader fetches quiz definitions from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error)
}

// QuizCache caches definitions with TTL to avoid repeated store hits.
// Instructor edits must call Invalidate; TTL alone does not bound staleness
// for a definition cached shortly before an edit.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[uuid.UUID]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[uuid.UUID]cachedQuiz),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID.String(), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops a cached entry after an instructor edit.
func (c *QuizCache) Invalidate(_ context.Context, quizID uuid.UUID) error {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
	return nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
