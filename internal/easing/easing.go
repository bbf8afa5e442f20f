// Package easing provides named easing curves for scroll animations.
// Every curve maps normalized elapsed time t in [0, 1] to normalized
// progress in [0, 1] with f(0) = 0 and f(1) = 1.
package easing

import "math"

// Func is an easing curve over normalized time.
type Func func(t float64) float64

// Linear is the default curve.
const Linear = "linear"

// builtins is the closed table of polynomial curves. Names follow the
// usual easeIn/easeOut/easeInOut convention.
var builtins = map[string]Func{
	Linear:           linear,
	"easeInQuad":     easeInQuad,
	"easeOutQuad":    easeOutQuad,
	"easeInOutQuad":  easeInOutQuad,
	"easeInCubic":    easeInCubic,
	"easeOutCubic":   easeOutCubic,
	"easeInOutCubic": easeInOutCubic,
	"easeInQuart":    easeInQuart,
	"easeOutQuart":   easeOutQuart,
	"easeInOutQuart": easeInOutQuart,
	"easeInQuint":    easeInQuint,
	"easeOutQuint":   easeOutQuint,
	"easeInOutQuint": easeInOutQuint,
}

func linear(t float64) float64 {
	return t
}

func easeInQuad(t float64) float64 {
	return t * t
}

func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func easeInCubic(t float64) float64 {
	return t * t * t
}

// easeOutCubic decelerates toward the target.
func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func easeInQuart(t float64) float64 {
	return t * t * t * t
}

func easeOutQuart(t float64) float64 {
	return 1 - math.Pow(1-t, 4)
}

func easeInOutQuart(t float64) float64 {
	if t < 0.5 {
		return 8 * t * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 4)/2
}

func easeInQuint(t float64) float64 {
	return t * t * t * t * t
}

func easeOutQuint(t float64) float64 {
	return 1 - math.Pow(1-t, 5)
}

func easeInOutQuint(t float64) float64 {
	if t < 0.5 {
		return 16 * t * t * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 5)/2
}
