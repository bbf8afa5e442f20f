// Package page implements the scroll primitives on top of a live browser
// page driven over CDP with go-rod.
//
// Page measures the document for target resolution, exposes the viewport
// and scroll containers as Scrollables, pushes navigation hashes and paces
// animations with requestAnimationFrame.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/rs/zerolog/log"
	"github.com/ysmood/gson"

	"github.com/Rorqualx/smoothie-go/internal/target"
	"github.com/Rorqualx/smoothie-go/internal/types"
)

// Scripts evaluated in the page. Each is a function so rod passes the
// arguments through.
const (
	pageYOffsetJS = `() => window.pageYOffset`

	elementOffsetJS = `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.getBoundingClientRect().top + window.pageYOffset : null;
	}`

	dimensionsJS = `() => ({
		bodyClientHeight: document.body ? document.body.clientHeight : 0,
		bodyScrollHeight: document.body ? document.body.scrollHeight : 0,
		rootScrollHeight: document.documentElement.scrollHeight,
		rootClientHeight: document.documentElement.clientHeight,
		innerHeight: window.innerHeight
	})`

	scrollWindowJS = `(y) => window.scroll(0, y)`

	elementScrollTopJS = `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.scrollTop : null;
	}`

	setElementScrollTopJS = `(sel, y) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.scrollTop = y;
		return true;
	}`

	pushHashJS = `(hash) => {
		if (!window.history || !window.history.pushState) return false;
		window.history.pushState(null, '', hash);
		return true;
	}`

	animationFrameJS = `() => new Promise(resolve => requestAnimationFrame(resolve))`
)

// Page adapts a rod page to the scroll engine.
type Page struct {
	page *rod.Page
}

// New wraps p.
func New(p *rod.Page) *Page {
	return &Page{page: p}
}

// PageYOffset returns window.pageYOffset.
func (p *Page) PageYOffset(ctx context.Context) (float64, error) {
	v, err := p.eval(ctx, "read pageYOffset", pageYOffsetJS)
	if err != nil {
		return 0, err
	}
	return v.Num(), nil
}

// ElementOffset returns the document-absolute top of the first element
// matching selector. The rect and the scroll offset come from the same
// evaluation, so a scroll in between cannot skew the sum.
func (p *Page) ElementOffset(ctx context.Context, selector string) (float64, bool, error) {
	v, err := p.eval(ctx, "measure element", elementOffsetJS, selector)
	if err != nil {
		return 0, false, err
	}
	if v.Nil() {
		return 0, false, nil
	}
	return v.Num(), true, nil
}

// Dimensions measures the document heights in a single round trip.
func (p *Page) Dimensions(ctx context.Context) (target.Dimensions, error) {
	v, err := p.eval(ctx, "measure document", dimensionsJS)
	if err != nil {
		return target.Dimensions{}, err
	}
	return parseDimensions(v), nil
}

// PushHash pushes hash onto the session history. Pages without the
// History API are left alone.
func (p *Page) PushHash(ctx context.Context, hash string) error {
	v, err := p.eval(ctx, "push history", pushHashJS, hash)
	if err != nil {
		return err
	}
	if !v.Bool() {
		log.Debug().Str("hash", hash).Msg("History API unavailable, hash not pushed")
	}
	return nil
}

// Viewport returns the window as a Scrollable.
func (p *Page) Viewport() *Viewport {
	return &Viewport{page: p}
}

// Element returns the first element matching selector as a Scrollable.
// The selector is evaluated on every access.
func (p *Page) Element(selector string) *Element {
	return &Element{page: p, selector: selector}
}

// Frames returns a frame source paced by requestAnimationFrame.
func (p *Page) Frames() *AnimationFrames {
	return &AnimationFrames{page: p}
}

// Viewport scrolls the window.
type Viewport struct {
	page *Page
}

// ScrollTop returns window.pageYOffset.
func (v *Viewport) ScrollTop(ctx context.Context) (float64, error) {
	return v.page.PageYOffset(ctx)
}

// SetScrollTop scrolls the window to y.
func (v *Viewport) SetScrollTop(ctx context.Context, y float64) error {
	_, err := v.page.eval(ctx, "scroll window", scrollWindowJS, y)
	return err
}

// Element scrolls a scroll container located by selector.
type Element struct {
	page     *Page
	selector string
}

// ScrollTop returns the element's scrollTop.
func (e *Element) ScrollTop(ctx context.Context) (float64, error) {
	v, err := e.page.eval(ctx, "read scrollTop", elementScrollTopJS, e.selector)
	if err != nil {
		return 0, err
	}
	if v.Nil() {
		return 0, fmt.Errorf("%w: %s", types.ErrElementNotFound, e.selector)
	}
	return v.Num(), nil
}

// SetScrollTop sets the element's scrollTop to y.
func (e *Element) SetScrollTop(ctx context.Context, y float64) error {
	v, err := e.page.eval(ctx, "write scrollTop", setElementScrollTopJS, e.selector, y)
	if err != nil {
		return err
	}
	if !v.Bool() {
		return fmt.Errorf("%w: %s", types.ErrElementNotFound, e.selector)
	}
	return nil
}

// AnimationFrames waits for the page's animation frames. Timestamps are
// taken on the Go side when a frame arrives, so Now and NextFrame share
// one clock.
type AnimationFrames struct {
	page *Page
}

// Now returns the wall clock time.
func (f *AnimationFrames) Now() time.Time {
	return time.Now()
}

// NextFrame blocks until the page renders its next frame.
func (f *AnimationFrames) NextFrame(ctx context.Context) (time.Time, error) {
	if _, err := f.page.eval(ctx, "wait animation frame", animationFrameJS); err != nil {
		return time.Time{}, err
	}
	return time.Now(), nil
}

func (p *Page) eval(ctx context.Context, op, js string, args ...interface{}) (gson.JSON, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.JSON{}, classify(ctx, op, err)
	}
	return res.Value, nil
}

// classify wraps an evaluation failure. Script exceptions are reported as
// they are; context errors keep their identity; anything else means the
// page can no longer be reached.
func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, types.ErrPageClosed, err)
}

func parseDimensions(v gson.JSON) target.Dimensions {
	return target.Dimensions{
		BodyClientHeight: v.Get("bodyClientHeight").Num(),
		BodyScrollHeight: v.Get("bodyScrollHeight").Num(),
		RootScrollHeight: v.Get("rootScrollHeight").Num(),
		RootClientHeight: v.Get("rootClientHeight").Num(),
		ViewportHeight:   v.Get("innerHeight").Num(),
	}
}
