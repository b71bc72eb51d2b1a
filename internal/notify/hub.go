// Package notify delivers change events from a note store to its
// subscribers.
//
// A Hub calls every handler synchronously, in subscription order, on the
// goroutine that publishes. Events from one hub are delivered in Seq order,
// and each carries a unique id so subscribers can detect gaps or repeats.
// An event published while another delivery is running, from a handler or
// from a second goroutine, is queued and delivered by the goroutine already
// delivering, after the event in flight.
package notify

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

type subscription struct {
	id      uint64
	handler types.ChangeHandler
}

// pending is an event waiting for delivery with the handlers registered
// when it was published.
type pending struct {
	ev   types.ChangeEvent
	subs []subscription
}

// Hub fans change events out to registered handlers.
type Hub struct {
	mu     sync.Mutex
	source string
	seq    uint64
	nextID uint64
	subs   []subscription
	logger zerolog.Logger

	queue    []pending
	draining bool
}

// NewHub returns a hub whose events carry source.
func NewHub(source string, logger zerolog.Logger) *Hub {
	return &Hub{
		source: source,
		logger: logger.With().Str("component", "notify").Str("source", source).Logger(),
	}
}

// Subscribe registers handler. The returned cancel function is idempotent.
func (h *Hub) Subscribe(handler types.ChangeHandler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs = append(h.subs, subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { h.unsubscribe(id) })
	}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered handlers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish builds the next event for op on noteID and delivers it to every
// handler registered at the time of the call. It returns the event.
//
// When no delivery is running the event has reached every handler by the time
// Publish returns. Otherwise it is queued behind the event in flight and
// Publish returns at once, so handlers may write to the store that owns the
// hub. A panicking handler is logged and skipped.
func (h *Hub) Publish(op types.ChangeOp, noteID int64) types.ChangeEvent {
	h.mu.Lock()
	h.seq++
	ev := types.ChangeEvent{
		ID:     newEventID(),
		Seq:    h.seq,
		Op:     op,
		NoteID: noteID,
		Source: h.source,
	}
	subs := make([]subscription, len(h.subs))
	copy(subs, h.subs)
	h.queue = append(h.queue, pending{ev: ev, subs: subs})
	queued := h.draining
	h.draining = true
	h.mu.Unlock()

	h.logger.Debug().
		Uint64("seq", ev.Seq).
		Str("op", string(op)).
		Int64("note_id", noteID).
		Int("subscribers", len(subs)).
		Bool("queued", queued).
		Msg("publishing change")

	if !queued {
		h.drain()
	}
	return ev
}

// drain delivers queued events in order until the queue is empty. Only one
// goroutine drains at a time.
func (h *Hub) drain() {
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.queue = nil
			h.draining = false
			h.mu.Unlock()
			return
		}
		p := h.queue[0]
		h.queue = h.queue[1:]
		h.mu.Unlock()

		for _, s := range p.subs {
			h.deliver(s, p.ev)
		}
	}
}

func (h *Hub) deliver(s subscription, ev types.ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Err(fmt.Errorf("handler panic: %v", r)).
				Uint64("seq", ev.Seq).
				Msg("change handler failed")
		}
	}()
	s.handler(ev)
}

// newEventID generates a UUID v7 for an event.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
