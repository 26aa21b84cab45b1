package app

import (
	"sync"

	"github.com/google/uuid"

	"lms-quiz-service/internal/domain"
)

// ResultsFeed fans out completed attempt results to per-quiz subscribers,
// feeding instructor dashboards. Delivery is best-effort: a slow subscriber
// has its oldest pending update dropped rather than blocking publishers.
type ResultsFeed struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan domain.AttemptResult]struct{}
}

func NewResultsFeed() *ResultsFeed {
	return &ResultsFeed{
		subscribers: make(map[uuid.UUID]map[chan domain.AttemptResult]struct{}),
	}
}

// Subscribe returns a channel receiving every completed attempt result for
// the quiz. The caller must invoke the returned cancel function to avoid
// leaks.
func (f *ResultsFeed) Subscribe(quizID uuid.UUID) (<-chan domain.AttemptResult, func()) {
	ch := make(chan domain.AttemptResult, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.AttemptResult]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if subs, ok := f.subscribers[quizID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(f.subscribers, quizID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a result to all subscribers of its quiz. Publishers hold
// the exclusive lock: a concurrent publisher could otherwise refill a slot
// between the drain and the send below and park this one on a full channel.
func (f *ResultsFeed) Publish(result domain.AttemptResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[result.QuizID] {
		select {
		case ch <- result:
		default:
			// Drop the oldest pending update so slow clients never block.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- result:
			default:
			}
		}
	}
}
