// Package overlay keeps the last client-observed engagement counters per post
// for the length of a login session, so that a list rebuilt from a fresh fetch
// does not visibly undo an optimistic update the backend has not caught up with.
package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/metrics"
)

// StorageKey names the persisted overlay map.
const StorageKey = "post-counter-overlay"

// Entry is the overlay's knowledge of one post.
type Entry struct {
	api.Counters
	UpdatedAt int64 `json:"updatedAt"`
}

// Store persists the whole overlay map.
type Store interface {
	Load(ctx context.Context) (map[string]Entry, error)
	Save(ctx context.Context, entries map[string]Entry) error
	Clear(ctx context.Context) error
}

// Overlay is safe for concurrent use.
type Overlay struct {
	mu      sync.Mutex
	entries map[string]Entry
	store   Store
	now     func() time.Time
}

// New loads the overlay from store. A nil store keeps it in memory only.
func New(ctx context.Context, store Store) (*Overlay, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	entries, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	metrics.OverlayEntries.Set(float64(len(entries)))
	return &Overlay{entries: entries, store: store, now: time.Now}, nil
}

// Record upserts the set fields of c for postID and stamps the entry.
// Fields not set in c keep their previous overlay value. Negative values are
// stored as zero. The in-memory overlay is updated even if persisting fails.
func (o *Overlay) Record(ctx context.Context, postID string, c api.Counters) error {
	if postID == "" || c.IsEmpty() {
		return nil
	}

	o.mu.Lock()
	prev := o.entries[postID]
	o.entries[postID] = Entry{
		Counters:  prev.Counters.Merge(c.Clamped()),
		UpdatedAt: o.now().UnixMilli(),
	}
	snapshot := o.copyLocked()
	o.mu.Unlock()

	metrics.OverlayEntries.Set(float64(len(snapshot)))
	if err := o.store.Save(ctx, snapshot); err != nil {
		logger.Warn("Failed to persist counter overlay", "post_id", postID, "error", err)
		return err
	}
	return nil
}

// MergeInto returns a new slice in which every post with an overlay entry
// carries the overlay's value for each counter the entry defines. posts is
// not modified.
func (o *Overlay) MergeInto(posts []api.Post) []api.Post {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]api.Post, len(posts))
	for i, p := range posts {
		if e, ok := o.entries[p.ID]; ok {
			out[i] = p.WithCounters(e.Counters)
			continue
		}
		out[i] = p.WithCounters(api.Counters{})
	}
	return out
}

// Get returns a copy of the entry for postID.
func (o *Overlay) Get(postID string) (Entry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[postID]
	if !ok {
		return Entry{}, false
	}
	return Entry{Counters: e.Counters.Clone(), UpdatedAt: e.UpdatedAt}, true
}

// Snapshot returns a deep copy of every entry.
func (o *Overlay) Snapshot() map[string]Entry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.copyLocked()
}

// Len reports the number of posts with an entry.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

// Flush drops every entry, in memory and in the store.
func (o *Overlay) Flush(ctx context.Context) error {
	o.mu.Lock()
	o.entries = make(map[string]Entry)
	o.mu.Unlock()

	metrics.OverlayEntries.Set(0)
	logger.Debug("Counter overlay flushed")
	return o.store.Clear(ctx)
}

func (o *Overlay) copyLocked() map[string]Entry {
	out := make(map[string]Entry, len(o.entries))
	for id, e := range o.entries {
		out[id] = Entry{Counters: e.Counters.Clone(), UpdatedAt: e.UpdatedAt}
	}
	return out
}
