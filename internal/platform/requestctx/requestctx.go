// Package requestctx carries per-call request state on context.Context.
package requestctx

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
)

// Context is the request, response and principal of one inbound call.
//
// A Context is created by the transport layer when a call starts and is
// discarded when the handler returns. It is never shared between calls.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	principal string
	committed atomic.Bool
}

type requestContextKey struct{}

// New builds a Context for one call.
func New(w http.ResponseWriter, r *http.Request, principal string) *Context {
	return &Context{
		Request:   r,
		Response:  w,
		principal: strings.TrimSpace(principal),
	}
}

// Method returns the transport method of the call.
func (c *Context) Method() string {
	if c == nil || c.Request == nil {
		return ""
	}
	return c.Request.Method
}

// Principal returns the authenticated principal id, or "" when the caller is
// not authenticated.
func (c *Context) Principal() string {
	if c == nil {
		return ""
	}
	return c.principal
}

// Commit marks the response as terminated. It reports false when the
// response had already been committed.
func (c *Context) Commit() bool {
	if c == nil {
		return false
	}
	return c.committed.CompareAndSwap(false, true)
}

// Committed reports whether a terminal response was already issued.
func (c *Context) Committed() bool {
	if c == nil {
		return false
	}
	return c.committed.Load()
}

// With stores rc on ctx, replacing any Context already present.
func With(ctx context.Context, rc *Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if rc == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, requestContextKey{}, rc)
	return WithUserID(ctx, rc.principal)
}

// FromContext returns the Context bound to ctx.
func FromContext(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	rc, ok := ctx.Value(requestContextKey{}).(*Context)
	if !ok || rc == nil {
		return nil, false
	}
	return rc, true
}

// Bind creates a Context for (w, r) and returns r rebound to a context that
// carries it. The returned request is the one stored on the Context.
func Bind(w http.ResponseWriter, r *http.Request, principal string) (*http.Request, *Context) {
	if r == nil {
		return nil, nil
	}
	rc := New(w, nil, principal)
	bound := r.WithContext(With(r.Context(), rc))
	rc.Request = bound
	return bound, rc
}
