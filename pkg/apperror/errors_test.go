package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("note not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("download: %w", ErrForbidden), http.StatusForbidden},
		{"validation", fmt.Errorf("title is required: %w", ErrInvalidInput), http.StatusBadRequest},
		{"already approved", ErrAlreadyApproved, http.StatusBadRequest},
		{"conflict", fmt.Errorf("bookmark: %w", ErrConflict), http.StatusConflict},
		{"state", ErrInvalidState, http.StatusConflict},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error code wins", New(http.StatusTeapot, "brew", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := MapErrorToStatus(tc.err); got != tc.want {
			t.Fatalf("%s: got=%d want=%d", tc.name, got, tc.want)
		}
	}
}

func TestFromGorm(t *testing.T) {
	if err := FromGorm(nil, "note"); err != nil {
		t.Fatalf("nil error should stay nil, got %v", err)
	}

	err := FromGorm(gorm.ErrRecordNotFound, "note")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "note not found: resource not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	err = FromGorm(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "bookmark")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if MapErrorToStatus(err) != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate key")
	}

	other := errors.New("disk full")
	if got := FromGorm(other, "note"); got != other {
		t.Fatalf("unknown errors must pass through, got %v", got)
	}
}
