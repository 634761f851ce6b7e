package client

import (
	"sync"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
)

// eventQueue delivers auth events to a single consumer in emission order.
// push never blocks: events wait in an unbounded slice until the pump hands
// them to the consumer.
type eventQueue struct {
	mu      sync.Mutex
	pending []models.AuthEvent
	closed  bool

	notify chan struct{}
	done   chan struct{}
	out    chan models.AuthEvent
	once   sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		out:    make(chan models.AuthEvent),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(ev models.AuthEvent) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pump() {
	defer close(q.out)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			select {
			case <-q.notify:
				continue
			case <-q.done:
				return
			}
		}
		ev := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-q.done:
			return
		}
	}
}

// close stops delivery; the out channel is closed once the pump exits.
// Undelivered events are dropped.
func (q *eventQueue) close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.pending = nil
		q.mu.Unlock()
		close(q.done)
	})
}
