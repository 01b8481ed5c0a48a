// Package guard restricts operations to a request method.
package guard

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/modelhub/internal/platform/requestctx"
)

// MethodError reports a call made with the wrong request method.
type MethodError struct {
	Expected string
	Actual   string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("must be %s, can't be %s", e.Expected, e.Actual)
}

// HTTPStatus maps the violation to 405.
func (e *MethodError) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// RequireMethod fails when the call bound to ctx was not made with expected,
// compared case-insensitively. It is a no-op outside a request.
func RequireMethod(ctx context.Context, expected string) error {
	rc, ok := requestctx.FromContext(ctx)
	if !ok {
		return nil
	}
	expected = strings.ToUpper(strings.TrimSpace(expected))
	actual := rc.Method()
	if strings.EqualFold(expected, actual) {
		return nil
	}
	return &MethodError{Expected: expected, Actual: actual}
}

// RequirePOST is RequireMethod for POST.
func RequirePOST(ctx context.Context) error {
	return RequireMethod(ctx, http.MethodPost)
}
