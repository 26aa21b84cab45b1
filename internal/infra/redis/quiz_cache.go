package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lms-quiz-service/internal/domain"
)

// QuizLoader fetches quiz definitions from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error)
}

// QuizCache caches full quiz definitions in Redis and falls back to a loader
// on cache miss. Definitions are stored as JSON under quiz:{quizID}:def —
// correct flags included, so the cache must never be exposed without
// sanitizing. Quizzes are immutable once their window opens, which makes a
// plain TTL safe.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	key := c.key(quizID)

	if quiz, ok := c.fromCache(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID.String(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.fromCache(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		data, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		// Best effort: a failed cache write never fails the read path.
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached definition, used after instructor edits.
func (c *QuizCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *QuizCache) fromCache(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transient failures are both cache misses.
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(quizID uuid.UUID) string {
	return "quiz:" + quizID.String() + ":def"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
