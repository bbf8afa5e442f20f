package easing

import "math"

const (
	newtonIterations = 8
	newtonMinSlope   = 1e-6
	bisectEpsilon    = 1e-7
	bisectMaxSteps   = 50
)

// CubicBezier returns a curve defined like the CSS cubic-bezier() timing
// function: the curve runs from (0,0) to (1,1) with control points
// (x1,y1) and (x2,y2). x1 and x2 must lie in [0,1] for the curve to be a
// function of time; callers validate that before building one.
func CubicBezier(x1, y1, x2, y2 float64) Func {
	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		return bezierCoord(solveBezierX(x, x1, x2), y1, y2)
	}
}

// bezierCoord evaluates one coordinate of a cubic Bézier anchored at 0 and 1.
func bezierCoord(t, p1, p2 float64) float64 {
	d := 1 - t
	return 3*d*d*t*p1 + 3*d*t*t*p2 + t*t*t
}

func bezierSlope(t, p1, p2 float64) float64 {
	d := 1 - t
	return 3*d*d*p1 + 6*d*t*(p2-p1) + 3*t*t*(1-p2)
}

// solveBezierX finds the curve parameter whose x coordinate equals x.
// Newton's method converges quickly for well-behaved curves; flat regions
// fall back to bisection.
func solveBezierX(x, x1, x2 float64) float64 {
	t := x
	for i := 0; i < newtonIterations; i++ {
		slope := bezierSlope(t, x1, x2)
		if math.Abs(slope) < newtonMinSlope {
			break
		}
		diff := bezierCoord(t, x1, x2) - x
		if math.Abs(diff) < bisectEpsilon {
			return t
		}
		t -= diff / slope
	}
	if t >= 0 && t <= 1 && math.Abs(bezierCoord(t, x1, x2)-x) < bisectEpsilon {
		return t
	}

	lo, hi := 0.0, 1.0
	t = x
	for i := 0; i < bisectMaxSteps; i++ {
		v := bezierCoord(t, x1, x2)
		if math.Abs(v-x) < bisectEpsilon {
			break
		}
		if v < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return t
}
