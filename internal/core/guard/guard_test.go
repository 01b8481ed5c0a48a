package guard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/louisbranch/modelhub/internal/platform/errors"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
)

func ctxWithMethod(method string) context.Context {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Method = method
	bound, _ := requestctx.Bind(httptest.NewRecorder(), r, "")
	return bound.Context()
}

func TestRequireMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected string
		actual   string
		wantErr  bool
	}{
		{name: "match", expected: "POST", actual: "POST"},
		{name: "case insensitive", expected: "post", actual: "POST"},
		{name: "lower actual", expected: "POST", actual: "post"},
		{name: "mismatch", expected: "POST", actual: "GET", wantErr: true},
		{name: "delete vs post", expected: "DELETE", actual: "POST", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := RequireMethod(ctxWithMethod(tc.actual), tc.expected)
			if (err != nil) != tc.wantErr {
				t.Fatalf("RequireMethod() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRequirePOSTViolation(t *testing.T) {
	t.Parallel()

	err := RequirePOST(ctxWithMethod(http.MethodGet))
	var methodErr *MethodError
	if !errors.As(err, &methodErr) {
		t.Fatalf("error = %v, want *MethodError", err)
	}
	if methodErr.Expected != "POST" || methodErr.Actual != "GET" {
		t.Fatalf("MethodError = %+v", methodErr)
	}
	if got := err.Error(); got != "must be POST, can't be GET" {
		t.Fatalf("Error() = %q", got)
	}
	if got := apperrors.HTTPStatus(err); got != http.StatusMethodNotAllowed {
		t.Fatalf("HTTPStatus() = %d, want %d", got, http.StatusMethodNotAllowed)
	}
}

func TestRequireMethodWithoutRequestIsNoop(t *testing.T) {
	t.Parallel()

	if err := RequirePOST(context.Background()); err != nil {
		t.Fatalf("RequirePOST() error = %v, want nil", err)
	}
}
