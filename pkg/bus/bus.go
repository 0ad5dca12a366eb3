// Package bus broadcasts post counter changes to every live view of a post.
package bus

import (
	"sync"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/metrics"
)

// Event says that the set fields of Counters are the new values for PostID.
type Event struct {
	PostID   string
	Counters api.Counters
}

// Handler receives events. It must not block.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe channel. Delivery is synchronous:
// Publish returns after every handler subscribed at call time has run, in
// subscription order. Nothing is queued for later subscribers.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

func New() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a func that removes it. The returned func
// may be called more than once and from inside a handler.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// SubscribePost is Subscribe filtered to one post.
func (b *Bus) SubscribePost(postID string, h Handler) func() {
	return b.Subscribe(func(e Event) {
		if e.PostID == postID {
			h(e)
		}
	})
}

// Publish delivers an event to the current subscribers. Handlers run without
// the bus lock held, so they may publish or (un)subscribe themselves.
func (b *Bus) Publish(postID string, c api.Counters) {
	if postID == "" || c.IsEmpty() {
		return
	}

	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	metrics.BusPublishes.Inc()
	for _, s := range subs {
		// Each handler gets its own copy so none can alter what the next sees.
		s.handler(Event{PostID: postID, Counters: c.Clone()})
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}
