// Package view renders the shared pages that model objects forward to.
package view

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/modelhub/internal/core/search"
	"github.com/louisbranch/modelhub/internal/platform/i18n"
	"golang.org/x/text/message"
)

// ErrorView is the name of the shared error page.
const ErrorView = "error"

// ErrUnknownView is returned when forwarding to an unregistered view.
var ErrUnknownView = errors.New("unknown view")

// Attributes are the values handed to a view on forward.
type Attributes struct {
	Message   string
	Exception error
	Pre       bool
	// Status is the HTTP status written with the page; zero means 200.
	Status int
}

// Map returns the attribute set seen by views. exception is present only
// when non-nil and pre only when true.
func (a Attributes) Map() map[string]any {
	m := map[string]any{"message": a.Message}
	if a.Exception != nil {
		m["exception"] = a.Exception
	}
	if a.Pre {
		m["pre"] = true
	}
	return m
}

// Renderer forwards a request to a named view.
type Renderer interface {
	Forward(w http.ResponseWriter, r *http.Request, subject search.Subject, view string, attrs Attributes) error
}

// ViewFunc builds the page title and body for a forwarded view.
type ViewFunc func(subject search.Subject, attrs map[string]any, p *message.Printer, opts PageOptions) (string, templ.Component)

// PageOptions are renderer-wide settings visible to views.
type PageOptions struct {
	ShowDiagnostics bool
}

// TemplRenderer renders views inside the shared layout.
type TemplRenderer struct {
	views map[string]ViewFunc
	opts  PageOptions
}

// Option configures a TemplRenderer.
type Option func(*TemplRenderer)

// WithDiagnostics shows raw exceptions on the error page.
func WithDiagnostics(show bool) Option {
	return func(r *TemplRenderer) { r.opts.ShowDiagnostics = show }
}

// WithView registers or replaces a named view.
func WithView(name string, fn ViewFunc) Option {
	return func(r *TemplRenderer) {
		if name = strings.TrimSpace(name); name != "" && fn != nil {
			r.views[name] = fn
		}
	}
}

// NewRenderer returns a renderer with the error view registered.
func NewRenderer(opts ...Option) *TemplRenderer {
	r := &TemplRenderer{views: map[string]ViewFunc{ErrorView: errorView}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Forward renders view for subject with attrs.
func (tr *TemplRenderer) Forward(w http.ResponseWriter, r *http.Request, subject search.Subject, name string, attrs Attributes) error {
	fn, ok := tr.views[name]
	if !ok {
		return fmt.Errorf("forward to %q: %w", name, ErrUnknownView)
	}
	p := i18n.PrinterFor(r)
	title, body := fn(subject, attrs.Map(), p, tr.opts)
	return tr.Page(w, r, attrs.Status, title, body)
}

// Page writes body inside the layout with status.
func (tr *TemplRenderer) Page(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) error {
	if w == nil {
		return nil
	}
	if status <= 0 {
		status = http.StatusOK
	}
	if body == nil {
		body = templ.NopComponent
	}
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	tag := i18n.ResolveTag(r)
	p := i18n.Printer(tag)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return Layout(p.Sprintf("title.page", title), tag.String()).Render(templ.WithChildren(ctx, body), w)
}
