package easing

import (
	"errors"
	"math"
	"testing"

	"github.com/Rorqualx/smoothie-go/internal/types"
)

func floatsClose(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestLinearIsIdentity(t *testing.T) {
	fn, err := Default().Lookup(Linear)
	if err != nil {
		t.Fatalf("Lookup(linear) failed: %v", err)
	}
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		if got := fn(x); got != x {
			t.Errorf("linear(%v) = %v", x, got)
		}
	}
}

func TestAllCurvesHitEndpoints(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			fn, err := r.Lookup(name)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if got := fn(0); !floatsClose(got, 0, 1e-9) {
				t.Errorf("f(0) = %v, want 0", got)
			}
			if got := fn(1); !floatsClose(got, 1, 1e-9) {
				t.Errorf("f(1) = %v, want 1", got)
			}
		})
	}
}

func TestBuiltinsAreMonotonic(t *testing.T) {
	for name, fn := range builtins {
		t.Run(name, func(t *testing.T) {
			prev := fn(0)
			for i := 1; i <= 200; i++ {
				x := float64(i) / 200
				got := fn(x)
				if got < prev-1e-12 {
					t.Fatalf("not monotonic: f(%v) = %v < %v", x, got, prev)
				}
				prev = got
			}
		})
	}
}

func TestEaseOutCubicDecelerates(t *testing.T) {
	if mid := easeOutCubic(0.5); mid <= 0.5 {
		t.Errorf("easeOutCubic(0.5) = %v, expected > 0.5", mid)
	}
	if mid := easeInCubic(0.5); mid >= 0.5 {
		t.Errorf("easeInCubic(0.5) = %v, expected < 0.5", mid)
	}
}

func TestInOutCurvesAreSymmetric(t *testing.T) {
	tests := []struct {
		name string
		fn   Func
	}{
		{"easeInOutQuad", easeInOutQuad},
		{"easeInOutCubic", easeInOutCubic},
		{"easeInOutQuart", easeInOutQuart},
		{"easeInOutQuint", easeInOutQuint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(0.5); !floatsClose(got, 0.5, 1e-9) {
				t.Errorf("f(0.5) = %v, want 0.5", got)
			}
			a, b := tt.fn(0.2), tt.fn(0.8)
			if !floatsClose(a+b, 1, 1e-9) {
				t.Errorf("f(0.2)+f(0.8) = %v, want 1", a+b)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("bouncy")
	if err == nil {
		t.Fatal("expected error for unknown easing")
	}
	if !errors.Is(err, types.ErrUnknownEasing) {
		t.Errorf("expected ErrUnknownEasing, got %v", err)
	}
	if Default().Has("bouncy") {
		t.Error("Has(bouncy) should be false")
	}
}
