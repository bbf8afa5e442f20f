package types

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestAbortedErrorUnwrap(t *testing.T) {
	err := NewAbortedError("#main", context.Canceled)

	if !errors.Is(err, ErrDriveAborted) {
		t.Error("aborted error should match ErrDriveAborted")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("aborted error should keep its cause")
	}
	if errors.Is(err, ErrSuperseded) {
		t.Error("plain abort should not match ErrSuperseded")
	}

	var scrollErr *ScrollError
	if !errors.As(err, &scrollErr) {
		t.Fatal("expected *ScrollError")
	}
	if scrollErr.Op != "drive" {
		t.Errorf("Op = %q, want drive", scrollErr.Op)
	}
}

func TestAbortedErrorWithoutCause(t *testing.T) {
	err := NewAbortedError("", nil)
	if !errors.Is(err, ErrDriveAborted) {
		t.Error("expected ErrDriveAborted")
	}
	if err.Error() != "scroll drive: scroll animation aborted" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSupersededError(t *testing.T) {
	err := NewSupersededError("offset 100")

	if !errors.Is(err, ErrDriveAborted) {
		t.Error("superseded error should match ErrDriveAborted")
	}
	if !errors.Is(err, ErrSuperseded) {
		t.Error("superseded error should match ErrSuperseded")
	}
	if !strings.Contains(err.Error(), "offset 100") {
		t.Errorf("message should name the target, got %q", err.Error())
	}
}

func TestResolveError(t *testing.T) {
	cause := errors.New("cdp: target closed")
	err := NewResolveError("#footer", cause)

	if !errors.Is(err, cause) {
		t.Error("resolve error should unwrap to cause")
	}
	if !strings.HasPrefix(err.Error(), "scroll resolve #footer") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
