// Package target resolves scroll targets into absolute document offsets.
package target

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Rorqualx/smoothie-go/internal/types"
)

// Kind identifies the variant held by a Target.
type Kind int

const (
	// KindOffset is an absolute scroll offset in pixels.
	KindOffset Kind = iota
	// KindSelector is a CSS selector resolved against the document.
	KindSelector
	// KindDocumentEnd is the offset that aligns the document bottom with
	// the viewport bottom.
	KindDocumentEnd
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindOffset:
		return "offset"
	case KindSelector:
		return "selector"
	case KindDocumentEnd:
		return "document_end"
	default:
		return "unknown"
	}
}

// Target is a scroll destination.
type Target struct {
	kind     Kind
	offset   float64
	selector string
}

// AtOffset targets an absolute offset.
func AtOffset(y float64) Target {
	return Target{kind: KindOffset, offset: y}
}

// AtSelector targets the first element matching selector.
func AtSelector(selector string) Target {
	return Target{kind: KindSelector, selector: selector}
}

// AtDocumentEnd targets the bottom of the document.
func AtDocumentEnd() Target {
	return Target{kind: KindDocumentEnd}
}

// Parse interprets command-line style input: a number is an offset,
// "top" and "bottom" are the document edges, anything else is a selector.
func Parse(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return Target{}, fmt.Errorf("%w: empty target", types.ErrInvalidTarget)
	case "top":
		return AtOffset(0), nil
	case "bottom":
		return AtDocumentEnd(), nil
	}
	if y, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return Target{}, fmt.Errorf("%w: %q is not a finite offset", types.ErrInvalidTarget, s)
		}
		return AtOffset(y), nil
	}
	return AtSelector(s), nil
}

// Kind returns the variant.
func (t Target) Kind() Kind {
	return t.kind
}

// Offset returns the absolute offset for KindOffset targets.
func (t Target) Offset() float64 {
	return t.offset
}

// Selector returns the selector for KindSelector targets.
func (t Target) Selector() string {
	return t.selector
}

// Hash returns the navigation hash implied by the target: the selector
// itself when it is an anchor such as "#section2", otherwise "".
func (t Target) Hash() string {
	if t.kind == KindSelector && strings.HasPrefix(t.selector, "#") {
		return t.selector
	}
	return ""
}

// String describes the target for logs and errors.
func (t Target) String() string {
	switch t.kind {
	case KindOffset:
		return "offset " + strconv.FormatFloat(t.offset, 'f', -1, 64)
	case KindSelector:
		return t.selector
	case KindDocumentEnd:
		return "document end"
	default:
		return "unknown target"
	}
}

// Dimensions are the document and viewport sizes needed for bottom
// resolution.
type Dimensions struct {
	BodyClientHeight float64
	BodyScrollHeight float64
	RootScrollHeight float64
	RootClientHeight float64
	ViewportHeight   float64
}

// ContentHeight is the largest of the four content measurements.
func (d Dimensions) ContentHeight() float64 {
	return math.Max(
		math.Max(d.BodyClientHeight, d.BodyScrollHeight),
		math.Max(d.RootScrollHeight, d.RootClientHeight),
	)
}

// Document exposes the DOM measurements the resolver consumes.
type Document interface {
	// ElementOffset returns the document-absolute top of the first element
	// matching selector: its bounding-rect top plus the page's vertical
	// scroll offset, both read in one evaluation. found is false when
	// nothing matches.
	ElementOffset(ctx context.Context, selector string) (offset float64, found bool, err error)
	// Dimensions returns document and viewport heights.
	Dimensions(ctx context.Context) (Dimensions, error)
}

// Resolver converts targets into absolute document offsets.
type Resolver struct {
	doc Document
}

// NewResolver creates a resolver over doc.
func NewResolver(doc Document) *Resolver {
	return &Resolver{doc: doc}
}

// Resolve returns the absolute offset for t.
// A selector that matches nothing resolves to 0 without error.
func (r *Resolver) Resolve(ctx context.Context, t Target) (float64, error) {
	switch t.kind {
	case KindOffset:
		return t.offset, nil
	case KindSelector:
		return r.resolveSelector(ctx, t.selector)
	case KindDocumentEnd:
		return r.BottomOffset(ctx)
	default:
		return 0, fmt.Errorf("%w: kind %d", types.ErrInvalidTarget, t.kind)
	}
}

func (r *Resolver) resolveSelector(ctx context.Context, selector string) (float64, error) {
	offset, found, err := r.doc.ElementOffset(ctx, selector)
	if err != nil {
		return 0, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if !found {
		log.Debug().Str("selector", selector).Msg("Scroll target not found, resolving to top")
		return 0, nil
	}
	return offset, nil
}

// BottomOffset returns the offset at which the bottom of the document
// lines up with the bottom of the viewport.
func (r *Resolver) BottomOffset(ctx context.Context) (float64, error) {
	dims, err := r.doc.Dimensions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read document dimensions: %w", err)
	}
	return dims.ContentHeight() - dims.ViewportHeight, nil
}
