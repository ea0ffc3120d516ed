package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errDB = errors.New("connection refused")

func TestKindsAndStatus(t *testing.T) {
	cases := []struct {
		err       error
		kind      Kind
		status    int
		retryable bool
	}{
		{InvalidInput("distanceKm must be > 0"), KindInvalidInput, http.StatusBadRequest, false},
		{Upstream(errDB, "activity history unavailable"), KindUpstreamUnavailable, http.StatusServiceUnavailable, true},
		{Internal(errDB, "boom"), KindInternal, http.StatusInternalServerError, false},
		{errDB, KindInternal, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.kind {
			t.Fatalf("kind: expected %s, got %s", tc.kind, got)
		}
		if got := HTTPStatus(tc.err); got != tc.status {
			t.Fatalf("status: expected %d, got %d", tc.status, got)
		}
		if got := IsRetryable(tc.err); got != tc.retryable {
			t.Fatalf("retryable: expected %v, got %v", tc.retryable, got)
		}
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("build plan: %w", Upstream(errDB, "activity history unavailable"))
	if KindOf(err) != KindUpstreamUnavailable {
		t.Fatalf("expected upstream kind through wrapping")
	}
	if !errors.Is(err, errDB) {
		t.Fatalf("expected cause to be reachable")
	}
	if Message(err) != "activity history unavailable" {
		t.Fatalf("unexpected message: %q", Message(err))
	}
}

func TestErrorString(t *testing.T) {
	if got := InvalidInput("bad mode").Error(); got != "[invalid_input] bad mode" {
		t.Fatalf("unexpected error string: %q", got)
	}
}
