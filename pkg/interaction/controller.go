package interaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/bus"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/metrics"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
)

var (
	// ErrInFlight rejects an action while another one of the same kind is
	// still waiting for the backend.
	ErrInFlight = errors.New("a request for this reaction is already in progress")

	// ErrSuperseded ends an action whose next step would contradict a
	// reaction set by a later action, such as inserting a dislike while the
	// post is liked again.
	ErrSuperseded = errors.New("superseded by a later reaction")

	// ErrClosed is returned once the controller has been closed.
	ErrClosed = errors.New("controller closed")

	// ErrAnonymous rejects reactions without a signed-in viewer.
	ErrAnonymous = errors.New("sign in to react to posts")
)

// Backend writes reaction edges.
type Backend interface {
	InsertReaction(ctx context.Context, kind api.ReactionKind, postID, userID string) error
	DeleteReaction(ctx context.Context, kind api.ReactionKind, postID, userID string) error
}

// Notifier surfaces a failed write to the user.
type Notifier interface {
	Notify(err error)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(err error)

func (f NotifierFunc) Notify(err error) { f(err) }

// Revalidator is told to refresh list views after a settled write.
type Revalidator interface {
	Trigger()
}

// Deps are the shared services a controller talks to. Bus, Overlay,
// Notifier and Revalidator are optional.
type Deps struct {
	Backend     Backend
	Bus         *bus.Bus
	Overlay     *overlay.Overlay
	Notifier    Notifier
	Revalidator Revalidator
}

// Controller owns the reaction state and counters of one rendered post for
// one viewer.
type Controller struct {
	deps     Deps
	postID   string
	viewerID string

	mu       sync.Mutex
	state    State
	counters api.Post
	inFlight map[api.ReactionKind]bool
	closed   bool
	// tail is closed when the most recently queued backend write finishes.
	tail chan struct{}

	unsubscribe func()
}

// New mounts a controller for post. The counters start from post with the
// overlay merged in, and follow every bus event for the post until Close.
func New(post api.Post, viewerID string, initial State, deps Deps) *Controller {
	if deps.Overlay != nil {
		post = deps.Overlay.MergeInto([]api.Post{post})[0]
	}
	done := make(chan struct{})
	close(done)

	c := &Controller{
		deps:     deps,
		postID:   post.ID,
		viewerID: viewerID,
		state:    initial,
		counters: post,
		inFlight: make(map[api.ReactionKind]bool),
		tail:     done,
	}
	if deps.Bus != nil {
		c.unsubscribe = deps.Bus.SubscribePost(post.ID, c.adopt)
	}
	return c
}

// PostID returns the post this controller renders.
func (c *Controller) PostID() string {
	return c.postID
}

// State returns the current, possibly optimistic, reaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Post returns the post with the current, possibly optimistic, counters.
func (c *Controller) Post() api.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters.WithCounters(api.Counters{})
}

// Close detaches the controller. Responses that arrive afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	unsub := c.unsubscribe
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Do runs action: every effect is applied locally first, then written to the
// backend. A failed write is undone locally and the rest of the action is
// skipped; effects that already succeeded stay. Do returns ErrInFlight if an
// action of the same kind is pending and ErrNoop if it does not apply. A step
// that would set a reaction while its opposite is held ends the action with
// ErrSuperseded, leaving the later reaction in place.
func (c *Controller) Do(ctx context.Context, a Action) error {
	if c.viewerID == "" {
		return ErrAnonymous
	}
	kind := a.Kind()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.inFlight[kind] {
		c.mu.Unlock()
		logger.Debug("Ignoring action while in flight", "post_id", c.postID, "action", a)
		return ErrInFlight
	}
	_, effects, err := Transition(c.state, a)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.inFlight[kind] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, kind)
		c.mu.Unlock()
	}()

	for _, e := range effects {
		if err := c.run(ctx, a, e); err != nil {
			return err
		}
	}
	return nil
}

// run applies one effect optimistically, waits for the controller's earlier
// writes, issues its own write and reconciles.
func (c *Controller) run(ctx context.Context, a Action, e Effect) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if other, ok := opposite(e.Kind); ok && e.Op == OpInsert && c.state.has(other) {
		c.mu.Unlock()
		logger.Debug("Skipping superseded effect", "post_id", c.postID, "action", a, "effect", e)
		return ErrSuperseded
	}
	before := counterOf(c.counters, e.Kind)
	after := max(before+e.Delta(), 0)
	c.state = e.Apply(c.state)
	c.counters = withCounter(c.counters, e.Kind, after)

	wait := c.tail
	done := make(chan struct{})
	c.tail = done
	c.mu.Unlock()

	c.record(ctx, counterSet(e.Kind, after))

	<-wait
	err := c.write(ctx, e)
	close(done)

	result := "ok"
	if err != nil && clierrors.Ignorable(err) {
		logger.Debug("Duplicate reaction edge, treating as success", "post_id", c.postID, "effect", e)
		result = "duplicate"
		err = nil
	} else if err != nil {
		result = "error"
	}
	metrics.InteractionEffects.WithLabelValues(string(e.Kind), string(e.Op), result).Inc()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return err
	}
	if err == nil {
		settled := counterSet(e.Kind, counterOf(c.counters, e.Kind))
		c.mu.Unlock()

		c.publish(ctx, settled)
		if c.deps.Revalidator != nil {
			c.deps.Revalidator.Trigger()
		}
		return nil
	}

	// Only undo what is still ours: a later action may already have moved
	// the flag or the counter on.
	reverted := false
	if c.state.has(e.Kind) == e.Value() {
		c.state = c.state.with(e.Kind, !e.Value())
		reverted = true
	}
	if counterOf(c.counters, e.Kind) == after {
		c.counters = withCounter(c.counters, e.Kind, before)
		reverted = true
	}
	current := counterSet(e.Kind, counterOf(c.counters, e.Kind))
	c.mu.Unlock()

	logger.Warn("Reaction write failed", "post_id", c.postID, "effect", e, "reverted", reverted, "error", err)
	if reverted {
		c.publish(ctx, current)
	}

	notice := clierrors.WriteError(fmt.Sprintf("Could not %s post", a), err)
	if c.deps.Notifier != nil {
		c.deps.Notifier.Notify(notice)
	}
	return notice
}

func (c *Controller) write(ctx context.Context, e Effect) error {
	switch e.Op {
	case OpInsert:
		return c.deps.Backend.InsertReaction(ctx, e.Kind, c.postID, c.viewerID)
	case OpDelete:
		return c.deps.Backend.DeleteReaction(ctx, e.Kind, c.postID, c.viewerID)
	}
	return fmt.Errorf("unknown op %q", e.Op)
}

// publish tells the other views and the overlay about settled counters.
func (c *Controller) publish(ctx context.Context, counters api.Counters) {
	if c.deps.Bus != nil {
		c.deps.Bus.Publish(c.postID, counters)
	}
	c.record(ctx, counters)
}

func (c *Controller) record(ctx context.Context, counters api.Counters) {
	if c.deps.Overlay == nil {
		return
	}
	if err := c.deps.Overlay.Record(ctx, c.postID, counters); err != nil {
		logger.Warn("Failed to record counters", "post_id", c.postID, "error", err)
	}
}

// adopt takes counters published by any view of the post, this one included.
func (c *Controller) adopt(e bus.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.counters = c.counters.WithCounters(e.Counters)
}

func counterOf(p api.Post, kind api.ReactionKind) int {
	switch kind {
	case api.ReactionLike:
		return p.LikesCount
	case api.ReactionDislike:
		return p.BrokenHeartsCount
	case api.ReactionRepost:
		return p.RepostsCount
	}
	return 0
}

func withCounter(p api.Post, kind api.ReactionKind, v int) api.Post {
	return p.WithCounters(counterSet(kind, v))
}

func counterSet(kind api.ReactionKind, v int) api.Counters {
	switch kind {
	case api.ReactionLike:
		return api.Counters{Likes: api.Int(v)}
	case api.ReactionDislike:
		return api.Counters{BrokenHearts: api.Int(v)}
	case api.ReactionRepost:
		return api.Counters{Reposts: api.Int(v)}
	}
	return api.Counters{}
}
