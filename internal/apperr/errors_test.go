package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("claim %s not found", "abc")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %v to match ErrNotFound", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("did not expect %v to match ErrValidation", err)
	}
	wrapped := fmt.Errorf("load: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatal("expected wrapped error to match ErrNotFound")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindExternalService, cause, "generate insights")
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if got := err.Error(); got != "generate insights: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
		code int
	}{
		{"plain", errors.New("boom"), KindInternal, http.StatusInternalServerError},
		{"not found", NotFound("x"), KindNotFound, http.StatusNotFound},
		{"transition", New(KindInvalidTransition, "x"), KindInvalidTransition, http.StatusConflict},
		{"validation", fmt.Errorf("ctx: %w", Validation("x")), KindValidation, http.StatusBadRequest},
		{"external", New(KindExternalService, "x"), KindExternalService, http.StatusBadGateway},
		{"forbidden", New(KindForbidden, "x"), KindForbidden, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := KindOf(tt.err)
			if got != tt.want {
				t.Fatalf("KindOf = %v, want %v", got, tt.want)
			}
			if got.HTTPStatus() != tt.code {
				t.Fatalf("HTTPStatus = %d, want %d", got.HTTPStatus(), tt.code)
			}
		})
	}
}
