package events

import (
	"encoding/json"
	"sort"
	"sync"
)

const subscriberBuffer = 16

// EventHub fans events out to subscribers and remembers the latest event of
// each name, so a new subscriber starts from the current state. A nil hub
// drops everything.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	last map[string]Event
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[chan Event]struct{}),
		last: make(map[string]Event),
	}
}

// Subscribe returns a channel that first receives the latest event of every
// name, in name order, then everything published after.
func (h *EventHub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	names := make([]string, 0, len(h.last))
	for name := range h.last {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ch <- h.last[name]
	}

	h.subs[ch] = struct{}{}
	return ch
}

func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish sends to every subscriber without blocking. A subscriber whose
// buffer is full misses the event.
func (h *EventHub) Publish(name string, payload any) {
	if h == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := Event{Name: name, Data: b}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[name] = msg
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}
