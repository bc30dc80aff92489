package app

import (
	"sync"

	"quiz-assessment-service/internal/domain"
)

// ResultFeed fans newly persisted results out to per-quiz subscribers, so
// instructors can watch submissions land live.
type ResultFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Result]struct{}
}

func NewResultFeed() *ResultFeed {
	return &ResultFeed{subscribers: make(map[string]map[chan domain.Result]struct{})}
}

// Subscribe returns a channel receiving each result persisted for quizID.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *ResultFeed) Subscribe(quizID string) (<-chan domain.Result, func()) {
	ch := make(chan domain.Result, 8)

	f.mu.Lock()
	if f.subscribers[quizID] == nil {
		f.subscribers[quizID] = make(map[chan domain.Result]struct{})
	}
	f.subscribers[quizID][ch] = struct{}{}
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

// Publish delivers result to every subscriber of its quiz. Slow consumers
// lose their oldest pending update instead of blocking the publisher.
func (f *ResultFeed) Publish(result domain.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[result.QuizID] {
		select {
		case ch <- result:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}
