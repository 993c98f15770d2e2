package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndCodeOf(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(CodeRetryable, "structure.HasStructure", base)
	if !IsCode(err, CodeRetryable) {
		t.Fatalf("expected retryable, got %q", CodeOf(err))
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to be preserved")
	}
	if Wrap(CodeInternal, "noop", nil) != nil {
		t.Fatalf("wrapping nil should return nil")
	}
}

func TestSentinelReasonThroughWrapping(t *testing.T) {
	sentinel := Sentinel(CodeConflict, "structure_exists", "course already has a structure")
	err := NewError(CodeConflict, "structure.Generate", "refusing to generate", sentinel)
	err = fmt.Errorf("handler: %w", err)
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is should find the sentinel")
	}
	if got := ReasonOf(err); got != "structure_exists" {
		t.Fatalf("ReasonOf: got=%q", got)
	}
	if got := CodeOf(err); got != CodeConflict {
		t.Fatalf("CodeOf: got=%q", got)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: CodeValidation, Op: "review.Reject", Message: "reason is required"}
	if got := err.Error(); got != "review.Reject: reason is required (validation)" {
		t.Fatalf("got=%q", got)
	}
	if got := (&Error{Code: CodeNotFound}).Error(); got != "not_found" {
		t.Fatalf("got=%q", got)
	}
}
