package core

import (
	"testing"

	"github.com/pkg/errors"
)

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("rank", "invalid rank")
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("NewFieldError() returned %T, want *ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "rank" {
		t.Errorf("fields = %+v, want a single rank entry", vErr.Fields)
	}
	if got, want := vErr.Error(), "rank: invalid rank"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	if got := NewValidationError(errors.New("bad input")).Error(); got != "bad input" {
		t.Errorf("Error() = %q, want the wrapped message", got)
	}
	if got := NewValidationError(nil).Error(); got != "" {
		t.Errorf("Error() = %q, want empty for no fields", got)
	}
}

func TestIsShutdown(t *testing.T) {
	err := errors.Wrap(NewShutdownError("integrity violation"), "handling request")
	if !IsShutdown(err) {
		t.Error("IsShutdown() = false for a wrapped shutdown error")
	}
	if IsShutdown(errors.New("nope")) {
		t.Error("IsShutdown() = true for a plain error")
	}
}
