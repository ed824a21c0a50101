package barboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ThumbnailFunc is called by the frame loop when a thumbnail was requested.
type ThumbnailFunc func(sc *Scene) error

// FrameLoop drives a board: each tick it advances the viewport transition,
// repaints once and serves pending thumbnail requests. Ticks must come from
// one goroutine; Stop may be called from any.
type FrameLoop struct {
	store     *Store
	renderer  *Renderer
	data      ExternalLookup
	thumbnail ThumbnailFunc

	now   func() time.Time
	last  time.Time
	ticks uint64

	stop     chan struct{}
	stopOnce sync.Once
	debug    bool
}

// NewFrameLoop returns a loop rendering s with r. data may be nil.
func NewFrameLoop(s *Store, r *Renderer, data ExternalLookup) *FrameLoop {
	return &FrameLoop{
		store:    s,
		renderer: r,
		data:     data,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// SetDebugMode enables per-frame timing output on stderr.
func (l *FrameLoop) SetDebugMode(enabled bool) { l.debug = enabled }

// OnThumbnail sets the function serving thumbnail requests.
func (l *FrameLoop) OnThumbnail(fn ThumbnailFunc) { l.thumbnail = fn }

// Ticks returns the number of frames run so far.
func (l *FrameLoop) Ticks() uint64 { return l.ticks }

// Tick runs one frame timed by the wall clock. The first tick has a zero
// delta.
func (l *FrameLoop) Tick() error {
	now := l.now()
	var dt time.Duration
	if !l.last.IsZero() {
		dt = now.Sub(l.last)
	}
	l.last = now
	return l.Step(dt)
}

// Step runs one frame with an explicit elapsed time, clamped to
// [0, MaxFrameDelta].
func (l *FrameLoop) Step(dt time.Duration) error {
	dt = min(max(dt, 0), MaxFrameDelta)
	l.ticks++

	t0 := time.Now()
	l.store.StepViewport(dt)
	t1 := time.Now()

	sc := l.store.Snapshot()
	l.store.BeginRender()
	err := l.renderer.Render(sc, l.data)
	l.store.EndRender()
	t2 := time.Now()

	if l.debug {
		st := l.renderer.Stats()
		l.debugLog(frameStats{
			stepTime:   t1.Sub(t0),
			renderTime: t2.Sub(t1),
			drawn:      st.Drawn,
			culled:     st.Culled,
			version:    sc.Version(),
		})
	}

	if l.store.ConsumeThumbnailRequest() && l.thumbnail != nil {
		if terr := l.thumbnail(l.store.Snapshot()); terr != nil {
			l.store.debugf("thumbnail: %v", terr)
		}
	}
	if err != nil {
		return fmt.Errorf("barboard: render: %w", err)
	}
	return nil
}

// Run ticks every interval until ctx is done or Stop is called. It returns
// the first render error, or nil on cancellation.
func (l *FrameLoop) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / 60
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	l.last = time.Time{}
	for {
		if err := l.Tick(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop ends Run. Calling it more than once is harmless.
func (l *FrameLoop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
