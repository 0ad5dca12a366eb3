package feed

import (
	"context"
	"sync"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultDebounce is the quiet window before a triggered rebuild runs.
const DefaultDebounce = 250 * time.Millisecond

// Builder is what a Refresher rebuilds.
type Builder interface {
	Build(ctx context.Context, viewerID string) ([]api.Post, error)
}

// Refresher coalesces rebuild triggers. Every Trigger restarts the quiet
// window; once it elapses one build runs, and builds that would overlap an
// in-flight one share its result.
type Refresher struct {
	builder  Builder
	viewerID string
	debounce time.Duration
	onResult func([]api.Post, error)

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewRefresher returns a refresher for viewerID's feed. onResult is called
// from the build goroutine after every build.
func NewRefresher(builder Builder, viewerID string, debounce time.Duration, onResult func([]api.Post, error)) *Refresher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		builder:  builder,
		viewerID: viewerID,
		debounce: debounce,
		onResult: onResult,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Trigger schedules a rebuild after the quiet window, restarting the window
// if one is already pending.
func (r *Refresher) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.fire)
}

// Refresh builds now, joining a build that is already running.
func (r *Refresher) Refresh(ctx context.Context) ([]api.Post, error) {
	ch := r.group.DoChan(r.viewerID, func() (interface{}, error) {
		return r.builder.Build(r.ctx, r.viewerID)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]api.Post), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the pending timer and cancels a running build.
func (r *Refresher) Close() {
	r.mu.Lock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
	}
	r.mu.Unlock()
	r.cancel()
}

func (r *Refresher) fire() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	logger.Debug("Debounced feed refresh", "viewer_id", r.viewerID)
	posts, err := r.Refresh(r.ctx)
	if r.ctx.Err() != nil {
		return
	}
	if r.onResult != nil {
		r.onResult(posts, err)
	}
}
