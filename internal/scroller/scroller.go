// Package scroller animates a page or element toward a scroll target.
//
// A Scroller composes the target resolver, the easing registry, the
// animation driver and the state cache. Each request returns a Future that
// settles once: nil when the animation completed, or an error wrapping
// types.ErrDriveAborted when it could not finish. On completion the
// navigation hash is pushed first, then the callback runs, then the Future
// settles.
//
// At most one animation is in flight per Scroller. Starting a new request
// cancels the previous drive and waits for any offset write in progress
// before the new animation measures its start offset. Observers and
// callbacks run outside that write, so they may start new requests.
package scroller

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rorqualx/smoothie-go/internal/driver"
	"github.com/Rorqualx/smoothie-go/internal/easing"
	"github.com/Rorqualx/smoothie-go/internal/metrics"
	"github.com/Rorqualx/smoothie-go/internal/state"
	"github.com/Rorqualx/smoothie-go/internal/target"
	"github.com/Rorqualx/smoothie-go/internal/types"
)

// Scrollable is something with a vertical scroll position: the viewport
// or a scroll container element.
type Scrollable interface {
	ScrollTop(ctx context.Context) (float64, error)
	SetScrollTop(ctx context.Context, y float64) error
}

// History records navigation hashes.
type History interface {
	PushHash(ctx context.Context, hash string) error
}

// Curves looks up easing curves by name.
type Curves interface {
	Lookup(name string) (easing.Func, error)
}

// Callback runs after a successful animation, before its Future settles.
type Callback func()

// PopstateHandler reacts to back/forward navigation.
type PopstateHandler func(hash string)

// Progress is reported to the observer after every offset write.
type Progress struct {
	State   state.AnimationState
	Elapsed time.Duration
	Offset  float64
}

// Config wires a Scroller to its collaborators.
type Config struct {
	// Document is measured to resolve targets. Required.
	Document target.Document
	// Viewport is the default Scrollable. Required.
	Viewport Scrollable
	// Frames schedules animation ticks. Required.
	Frames driver.FrameSource
	// History is optional; nil disables hash updates.
	History History
	// Curves defaults to easing.Default().
	Curves Curves
	// Defaults override the built-in option defaults for Element, Easing
	// and Duration. Adjust is per request and is not taken from Defaults.
	Defaults Options
	// Observer, if set, receives every applied offset. It runs on the
	// drive's goroutine and may start a new request, which supersedes the
	// one being observed.
	Observer func(Progress)
}

// Scroller coordinates scroll animations. It is safe for concurrent use.
type Scroller struct {
	resolver *target.Resolver
	viewport Scrollable
	history  History
	curves   Curves
	driver   *driver.Driver
	cache    *state.Cache
	defaults Options
	observer func(Progress)

	// startMu serializes the synchronous start phase of requests.
	startMu sync.Mutex

	mu       sync.Mutex
	active   *run
	popstate PopstateHandler
}

// run tracks one in-flight animation.
type run struct {
	state  state.AnimationState
	cancel context.CancelFunc
	// writeMu is held around each offset write. Writes are skipped once
	// the run's context is canceled, so after cancel, acquiring writeMu
	// means the run will not write again.
	writeMu    sync.Mutex
	superseded bool // guarded by Scroller.mu
}

// New creates a Scroller.
func New(cfg Config) *Scroller {
	curves := cfg.Curves
	if curves == nil {
		curves = easing.Default()
	}
	return &Scroller{
		resolver: target.NewResolver(cfg.Document),
		viewport: cfg.Viewport,
		history:  cfg.History,
		curves:   curves,
		driver:   driver.New(cfg.Frames),
		cache:    state.NewCache(),
		defaults: cfg.Defaults,
		observer: cfg.Observer,
		popstate: noopPopstate,
	}
}

// ScrollTo animates toward t. ctx bounds the whole animation: canceling it
// aborts the drive and rejects the Future. cb may be nil.
func (s *Scroller) ScrollTo(ctx context.Context, t target.Target, opts Options, cb Callback) *Future {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	future := newFuture()
	opt := opts.withDefaults(s.defaults, s.viewport)

	curve, err := s.curves.Lookup(opt.Easing)
	if err != nil {
		metrics.RecordRejected()
		future.settle(&types.ScrollError{Op: "start", Target: t.String(), Err: err})
		return future
	}

	s.supersede()

	if err := ctx.Err(); err != nil {
		metrics.RecordRejected()
		future.settle(types.NewAbortedError(t.String(), err))
		return future
	}

	startOffset, err := opt.Element.ScrollTop(ctx)
	if err != nil {
		metrics.RecordRejected()
		future.settle(&types.ScrollError{Op: "start", Target: t.String(), Err: err})
		return future
	}

	endOffset, err := s.resolver.Resolve(ctx, t)
	if err != nil {
		metrics.RecordRejected()
		future.settle(types.NewResolveError(t.String(), err))
		return future
	}

	st := state.AnimationState{
		ID:          uuid.NewString(),
		Hash:        t.Hash(),
		Easing:      opt.Easing,
		Duration:    opt.Duration,
		StartOffset: startOffset,
		EndOffset:   endOffset + opt.Adjust,
	}
	s.cache.Store(st)

	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		state:  st,
		cancel: cancel,
	}

	s.mu.Lock()
	s.active = r
	s.mu.Unlock()

	log.Debug().
		Str("animation_id", st.ID).
		Str("target", t.String()).
		Float64("from_y", st.StartOffset).
		Float64("to_y", st.EndOffset).
		Str("easing", st.Easing).
		Dur("duration", st.Duration).
		Msg("Starting scroll animation")

	metrics.RecordStart(t.Kind().String())
	go s.animate(runCtx, r, t, opt.Element, curve, cb, future)

	return future
}

// ScrollTop animates to offset 0. It is ScrollTo with target.AtOffset(0).
func (s *Scroller) ScrollTop(ctx context.Context, opts Options, cb Callback) *Future {
	return s.ScrollTo(ctx, target.AtOffset(0), opts, cb)
}

// ScrollBottom animates to the bottom of the document.
func (s *Scroller) ScrollBottom(ctx context.Context, opts Options, cb Callback) *Future {
	return s.ScrollTo(ctx, target.AtDocumentEnd(), opts, cb)
}

// State returns the most recently configured animation.
func (s *Scroller) State() state.AnimationState {
	return s.cache.Load()
}

// OnPopstate is called when back/forward navigation changes the hash.
// It forwards to the handler set with SetPopstateHandler; the default
// handler does nothing.
func (s *Scroller) OnPopstate(hash string) {
	s.mu.Lock()
	h := s.popstate
	s.mu.Unlock()
	h(hash)
}

// SetPopstateHandler replaces the popstate handler. nil restores the no-op.
func (s *Scroller) SetPopstateHandler(h PopstateHandler) {
	if h == nil {
		h = noopPopstate
	}
	s.mu.Lock()
	s.popstate = h
	s.mu.Unlock()
}

func noopPopstate(string) {}

// supersede cancels the in-flight drive, if any, and waits until it has
// stopped writing offsets. It does not wait for the drive to return, so it
// is safe to call from that drive's observer.
func (s *Scroller) supersede() {
	s.mu.Lock()
	prev := s.active
	if prev != nil {
		prev.superseded = true
		s.active = nil
	}
	s.mu.Unlock()

	if prev == nil {
		return
	}
	prev.cancel()
	// Wait out a write in progress; later ticks see the canceled context.
	prev.writeMu.Lock()
	prev.writeMu.Unlock()

	log.Debug().
		Str("animation_id", prev.state.ID).
		Msg("Scroll animation superseded")
}

// animate drives one animation and settles its Future.
func (s *Scroller) animate(ctx context.Context, r *run, t target.Target, el Scrollable, curve easing.Func, cb Callback, future *Future) {
	defer r.cancel()

	st := r.state
	started := time.Now()
	skipped := false

	onTick := func(elapsed time.Duration) {
		y := st.Offset(elapsed, curve)

		r.writeMu.Lock()
		if ctx.Err() != nil {
			r.writeMu.Unlock()
			skipped = true
			return
		}
		err := el.SetScrollTop(ctx, y)
		r.writeMu.Unlock()

		if err != nil {
			metrics.RecordTickWriteFailure()
			log.Debug().
				Err(err).
				Str("animation_id", st.ID).
				Float64("y", y).
				Msg("Scroll step failed")
			// Continue anyway, the next frame may still land
		}
		if s.observer != nil {
			s.observer(Progress{State: st, Elapsed: elapsed, Offset: y})
		}
	}

	s.driver.Drive(ctx, st.Duration, onTick, driver.Hooks{
		OnSuccess: func() {
			if skipped {
				// Canceled between the final frame and its write.
				s.fail(r, t, ctx.Err(), started, future)
				return
			}
			s.complete(ctx, r, cb, started, future)
		},
		OnFailure: func(err error) {
			s.fail(r, t, err, started, future)
		},
	})
}

// release clears r as the active run and reports whether a newer request
// superseded it.
func (s *Scroller) release(r *run) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == r {
		s.active = nil
	}
	return r.superseded
}

func (s *Scroller) fail(r *run, t target.Target, err error, started time.Time, future *Future) {
	superseded := s.release(r)

	result := metrics.ResultAborted
	settleErr := error(types.NewAbortedError(t.String(), err))
	if superseded {
		result = metrics.ResultSuperseded
		settleErr = types.NewSupersededError(t.String())
	}
	metrics.RecordFinish(result, time.Since(started))
	log.Debug().
		Err(err).
		Str("animation_id", r.state.ID).
		Bool("superseded", superseded).
		Msg("Scroll animation aborted")
	future.settle(settleErr)
}

func (s *Scroller) complete(ctx context.Context, r *run, cb Callback, started time.Time, future *Future) {
	s.release(r)
	st := r.state

	if s.history != nil && st.Hash != "" {
		if err := s.history.PushHash(ctx, st.Hash); err != nil {
			log.Warn().
				Err(err).
				Str("animation_id", st.ID).
				Str("hash", st.Hash).
				Msg("Failed to push navigation hash")
		}
	}
	if cb != nil {
		cb()
	}

	metrics.RecordFinish(metrics.ResultCompleted, time.Since(started))
	log.Debug().
		Str("animation_id", st.ID).
		Float64("target_y", st.EndOffset).
		Msg("Scroll animation completed")
	future.settle(nil)
}
