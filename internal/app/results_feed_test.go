package app_test

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/domain"
)

func TestResultsFeedFanOut(t *testing.T) {
	feed := app.NewResultsFeed()
	quizID := uuid.New()

	first, cancelFirst := feed.Subscribe(quizID)
	second, cancelSecond := feed.Subscribe(quizID)
	defer cancelFirst()
	defer cancelSecond()

	other, cancelOther := feed.Subscribe(uuid.New())
	defer cancelOther()

	feed.Publish(domain.AttemptResult{QuizID: quizID, TotalScore: 4})

	for name, ch := range map[string]<-chan domain.AttemptResult{"first": first, "second": second} {
		select {
		case result := <-ch:
			if result.TotalScore != 4 {
				t.Fatalf("%s subscriber got %+v", name, result)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber received nothing", name)
		}
	}

	select {
	case result := <-other:
		t.Fatalf("unrelated quiz subscriber received %+v", result)
	default:
	}
}

func TestResultsFeedDropsStaleForSlowSubscribers(t *testing.T) {
	feed := app.NewResultsFeed()
	quizID := uuid.New()

	ch, cancel := feed.Subscribe(quizID)
	defer cancel()

	// Publish more than the buffer can hold without draining; publishers
	// must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 32; i++ {
			feed.Publish(domain.AttemptResult{QuizID: quizID, AttemptNumber: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The newest update is still retrievable.
	var last domain.AttemptResult
	for {
		select {
		case result := <-ch:
			last = result
			continue
		default:
		}
		break
	}
	if last.AttemptNumber != 31 {
		t.Fatalf("latest update lost, got attempt %d", last.AttemptNumber)
	}
}

// Concurrent publishers racing for the same slow subscriber's buffer slot
// must all return: a drained slot refilled by a rival publisher would park a
// blocking send forever and wedge every later Publish and cancel.
func TestResultsFeedConcurrentPublishersNeverBlock(t *testing.T) {
	feed := app.NewResultsFeed()
	quizID := uuid.New()

	ch, cancel := feed.Subscribe(quizID)
	_ = ch // never drained

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				feed.Publish(domain.AttemptResult{QuizID: quizID, AttemptNumber: i})
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishers deadlocked on a full subscriber buffer")
	}

	// cancel must not wedge behind a parked publisher either
	canceled := make(chan struct{})
	go func() {
		cancel()
		close(canceled)
	}()
	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("cancel blocked after concurrent publishing")
	}
}

func TestResultsFeedCancelIsIdempotent(t *testing.T) {
	feed := app.NewResultsFeed()
	_, cancel := feed.Subscribe(uuid.New())
	cancel()
	cancel() // second cancel must not panic on the closed channel
}
