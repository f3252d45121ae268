package out

import (
	"sync"

	trackingout "worklens/internal/modules/tracking/port/out"
)

// EventBroadcaster fans tracker events out to any number of
// subscribers. Slow subscribers drop events rather than stall the
// scheduler goroutine.
type EventBroadcaster struct {
	mu   sync.Mutex
	subs map[int]chan trackingout.Event
	next int
}

func NewEventBroadcaster() *EventBroadcaster {
	return &EventBroadcaster{subs: make(map[int]chan trackingout.Event)}
}

func (b *EventBroadcaster) Publish(event trackingout.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a buffered event channel and a cancel func that
// detaches and closes it.
func (b *EventBroadcaster) Subscribe() (<-chan trackingout.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan trackingout.Event, 16)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
