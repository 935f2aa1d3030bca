package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfThroughWrapChain(t *testing.T) {
	base := NotFound("game %s not found", "ABC")
	wrapped := fmt.Errorf("join failed: %w", base)
	doubleWrapped := fmt.Errorf("handler: %w", wrapped)

	if got := KindOf(doubleWrapped); got != KindNotFound {
		t.Errorf("KindOf = %v, want KindNotFound", got)
	}
}

func TestKindOfUntagged(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf = %v, want KindUnknown", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want KindUnknown", got)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", Transient("connect", errors.New("refused")), true},
		{"not found", NotFound("game missing"), false},
		{"terminal", Terminal("game finished"), false},
		{"validation", Validation("name required"), false},
		{"untagged", errors.New("whatever"), false},
		{"wrapped transient", fmt.Errorf("outer: %w", Transient("fetch", errors.New("timeout"))), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("socket closed")
	err := Transient("subscribe", inner)
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}
