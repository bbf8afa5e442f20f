package target

import (
	"context"
	"errors"
	"testing"

	"github.com/Rorqualx/smoothie-go/internal/types"
)

// fakeDocument models a page whose scroll offset may change between
// separate measurements: every ElementOffset call scrolls it by drift.
type fakeDocument struct {
	pageY    float64
	drift    float64
	elements map[string]float64 // selector -> document-absolute top
	dims     Dimensions
	err      error
	queries  []string
}

func (d *fakeDocument) ElementOffset(ctx context.Context, selector string) (float64, bool, error) {
	d.queries = append(d.queries, selector)
	if d.err != nil {
		return 0, false, d.err
	}
	top, ok := d.elements[selector]
	if !ok {
		return 0, false, nil
	}
	d.pageY += d.drift
	return top, true, nil
}

func (d *fakeDocument) Dimensions(ctx context.Context) (Dimensions, error) {
	return d.dims, d.err
}

func TestResolveOffsetUnchanged(t *testing.T) {
	r := NewResolver(&fakeDocument{pageY: 300})

	for _, y := range []float64{0, 42.5, -10, 100000} {
		got, err := r.Resolve(context.Background(), AtOffset(y))
		if err != nil {
			t.Fatalf("Resolve(%v) failed: %v", y, err)
		}
		if got != y {
			t.Errorf("Resolve(%v) = %v", y, got)
		}
	}
}

func TestResolveSelectorIsDocumentAbsolute(t *testing.T) {
	doc := &fakeDocument{
		pageY:    250,
		elements: map[string]float64{"#section2": 1000},
	}
	r := NewResolver(doc)

	got, err := r.Resolve(context.Background(), AtSelector("#section2"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got != 1000 {
		t.Errorf("Resolve(#section2) = %v, want 1000", got)
	}
}

func TestResolveSelectorStableWhilePageScrolls(t *testing.T) {
	doc := &fakeDocument{
		drift:    120,
		elements: map[string]float64{"#section2": 1000},
	}
	r := NewResolver(doc)

	for i := 0; i < 3; i++ {
		got, err := r.Resolve(context.Background(), AtSelector("#section2"))
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != 1000 {
			t.Errorf("Resolve #%d = %v, want 1000 at pageY %v", i, got, doc.pageY)
		}
	}
	if len(doc.queries) != 3 {
		t.Errorf("expected one document query per resolution, got %d", len(doc.queries))
	}
}

func TestResolveSelectorMissIsZero(t *testing.T) {
	doc := &fakeDocument{pageY: 500}
	r := NewResolver(doc)

	got, err := r.Resolve(context.Background(), AtSelector(".does-not-exist"))
	if err != nil {
		t.Fatalf("selector miss should not error: %v", err)
	}
	if got != 0 {
		t.Errorf("selector miss resolved to %v, want 0", got)
	}
}

func TestResolveSelectorQueryError(t *testing.T) {
	cause := errors.New("target closed")
	r := NewResolver(&fakeDocument{err: cause})

	_, err := r.Resolve(context.Background(), AtSelector("#a"))
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}

func TestBottomOffset(t *testing.T) {
	tests := []struct {
		name string
		dims Dimensions
		want float64
	}{
		{
			name: "body scroll height dominates",
			dims: Dimensions{BodyClientHeight: 1500, BodyScrollHeight: 2000, RootScrollHeight: 1900, RootClientHeight: 800, ViewportHeight: 800},
			want: 1200,
		},
		{
			name: "root scroll height dominates",
			dims: Dimensions{BodyClientHeight: 100, BodyScrollHeight: 100, RootScrollHeight: 3000, RootClientHeight: 800, ViewportHeight: 800},
			want: 2200,
		},
		{
			name: "short document",
			dims: Dimensions{BodyClientHeight: 400, BodyScrollHeight: 400, RootScrollHeight: 800, RootClientHeight: 800, ViewportHeight: 800},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(&fakeDocument{dims: tt.dims})

			got, err := r.BottomOffset(context.Background())
			if err != nil {
				t.Fatalf("BottomOffset failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("BottomOffset = %v, want %v", got, tt.want)
			}

			viaResolve, err := r.Resolve(context.Background(), AtDocumentEnd())
			if err != nil {
				t.Fatalf("Resolve(DocumentEnd) failed: %v", err)
			}
			if viaResolve != got {
				t.Errorf("Resolve(DocumentEnd) = %v, BottomOffset = %v", viaResolve, got)
			}
		})
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{AtSelector("#section2"), "#section2"},
		{AtSelector(".card"), ""},
		{AtSelector("main #x"), ""},
		{AtOffset(100), ""},
		{AtDocumentEnd(), ""},
	}

	for _, tt := range tests {
		if got := tt.target.Hash(); got != tt.want {
			t.Errorf("%s.Hash() = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		kind     Kind
		offset   float64
		selector string
	}{
		{"120", KindOffset, 120, ""},
		{"-5.5", KindOffset, -5.5, ""},
		{"top", KindOffset, 0, ""},
		{"bottom", KindDocumentEnd, 0, ""},
		{"#section2", KindSelector, 0, "#section2"},
		{"  .card > h2 ", KindSelector, 0, ".card > h2"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got.Kind() != tt.kind {
				t.Errorf("Kind = %v, want %v", got.Kind(), tt.kind)
			}
			if got.Offset() != tt.offset {
				t.Errorf("Offset = %v, want %v", got.Offset(), tt.offset)
			}
			if got.Selector() != tt.selector {
				t.Errorf("Selector = %q, want %q", got.Selector(), tt.selector)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "NaN", "Inf"} {
		if _, err := Parse(in); !errors.Is(err, types.ErrInvalidTarget) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidTarget", in, err)
		}
	}
}
