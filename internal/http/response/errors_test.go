package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	domainagg "github.com/gcfisi/coursehub-backend/internal/domain/aggregates"
	"github.com/gcfisi/coursehub-backend/internal/platform/apierr"
)

func TestFromServiceError(t *testing.T) {
	notConverged := domainagg.Sentinel(domainagg.CodePreconditionFailed, "reset_not_converged", "structure still present")
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainagg.NewError(domainagg.CodeValidation, "op", "bad", nil), http.StatusBadRequest, "validation"},
		{"forbidden", domainagg.NewError(domainagg.CodeForbidden, "op", "nope", nil), http.StatusForbidden, "forbidden"},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "op", "missing", nil), http.StatusNotFound, "not_found"},
		{"retryable", domainagg.Wrap(domainagg.CodeRetryable, "op", errors.New("dial tcp")), http.StatusServiceUnavailable, "retryable"},
		{"deadline", fmt.Errorf("load: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "retryable"},
		{"reason", fmt.Errorf("reset: %w", notConverged), http.StatusConflict, "reset_not_converged"},
		{"invariant", domainagg.NewError(domainagg.CodeInvariantViolation, "op", "already reviewed", nil), http.StatusConflict, "invariant_violation"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "load_failed"},
		{"api error passthrough", apierr.New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
	}
	for _, tc := range cases {
		got := FromServiceError(tc.err, "load_failed")
		if got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%s: got status=%d code=%q want status=%d code=%q", tc.name, got.Status, got.Code, tc.status, tc.code)
		}
	}
	if FromServiceError(nil, "x") != nil {
		t.Fatalf("nil error should map to nil")
	}
}
