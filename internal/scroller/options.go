package scroller

import (
	"time"

	"github.com/Rorqualx/smoothie-go/internal/easing"
	"github.com/Rorqualx/smoothie-go/internal/state"
)

// Options configures one scroll request. Zero Element, Easing and Duration
// fall back to the Scroller's defaults and then to the built-in ones: the
// viewport, "linear" and 500ms. Adjust is always taken from the request,
// since a zero adjustment is a valid explicit value.
type Options struct {
	// Element is the scroll container; nil means the viewport.
	Element Scrollable
	// Easing names the curve.
	Easing string
	// Duration is the animation length.
	Duration time.Duration
	// Adjust is added to the resolved target offset. Ignored in
	// Config.Defaults.
	Adjust float64
}

// withDefaults merges o over defaults, field by field. defaults.Adjust is
// not consulted.
func (o Options) withDefaults(defaults Options, viewport Scrollable) Options {
	out := o
	if out.Element == nil {
		out.Element = defaults.Element
	}
	if out.Element == nil {
		out.Element = viewport
	}
	if out.Easing == "" {
		out.Easing = defaults.Easing
	}
	if out.Easing == "" {
		out.Easing = easing.Linear
	}
	if out.Duration <= 0 {
		out.Duration = defaults.Duration
	}
	if out.Duration <= 0 {
		out.Duration = state.DefaultDuration
	}
	return out
}
