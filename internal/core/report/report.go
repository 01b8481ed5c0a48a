// Package report forwards failing requests to the shared error view.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/louisbranch/modelhub/internal/core/guard"
	"github.com/louisbranch/modelhub/internal/core/search"
	apperrors "github.com/louisbranch/modelhub/internal/platform/errors"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
	"github.com/louisbranch/modelhub/internal/view"
)

// ErrorView is the view every report is forwarded to.
const ErrorView = view.ErrorView

// ErrAlreadyForwarded is returned when the response of a call was already
// committed by an earlier report.
var ErrAlreadyForwarded = errors.New("response already forwarded")

// Reporter renders error reports through a view renderer.
type Reporter struct {
	renderer view.Renderer
	logger   *log.Logger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger for dropped reports.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New builds a Reporter.
func New(renderer view.Renderer, opts ...Option) *Reporter {
	r := &Reporter{renderer: renderer, logger: log.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report forwards err to the error view. The message comes from err and
// err itself is attached as the exception. A nil err reports nothing.
func (r *Reporter) Report(rc *requestctx.Context, subject search.Subject, err error) error {
	if err == nil {
		return nil
	}
	status := apperrors.HTTPStatus(err)
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	header := http.Header{}
	var methodErr *guard.MethodError
	if errors.As(err, &methodErr) && methodErr.Expected != "" {
		header.Set("Allow", methodErr.Expected)
	}
	return r.forward(rc, subject, header, view.Attributes{
		Message:   err.Error(),
		Exception: err,
		Status:    status,
	})
}

// ReportMessage forwards message verbatim. pre asks the view to keep the
// message's line breaks and spacing.
func (r *Reporter) ReportMessage(rc *requestctx.Context, subject search.Subject, message string, pre bool) error {
	return r.forward(rc, subject, nil, view.Attributes{
		Message: message,
		Pre:     pre,
		Status:  http.StatusBadRequest,
	})
}

// ReportCurrent is Report against the request context bound to ctx. Without
// one the report is logged and dropped.
func (r *Reporter) ReportCurrent(ctx context.Context, subject search.Subject, err error) error {
	rc, ok := requestctx.FromContext(ctx)
	if !ok {
		r.logger.Printf("error report dropped: no request context subject=%q err=%v", search.SearchName(subject), err)
		return nil
	}
	return r.Report(rc, subject, err)
}

// ReportCurrentMessage is ReportMessage against the request context bound to
// ctx. Without one the report is logged and dropped.
func (r *Reporter) ReportCurrentMessage(ctx context.Context, subject search.Subject, message string, pre bool) error {
	rc, ok := requestctx.FromContext(ctx)
	if !ok {
		r.logger.Printf("error report dropped: no request context subject=%q message=%q", search.SearchName(subject), message)
		return nil
	}
	return r.ReportMessage(rc, subject, message, pre)
}

// forward renders attrs once per call. When the view fails, the call was
// already committed, so a plain-text error with the same status is written
// instead.
func (r *Reporter) forward(rc *requestctx.Context, subject search.Subject, header http.Header, attrs view.Attributes) error {
	if rc == nil {
		return errors.New("request context is required")
	}
	if r.renderer == nil {
		return errors.New("view renderer is not configured")
	}
	if !rc.Commit() {
		return ErrAlreadyForwarded
	}
	if rc.Response != nil {
		for key, values := range header {
			rc.Response.Header()[key] = values
		}
	}
	if err := r.renderer.Forward(rc.Response, rc.Request, subject, ErrorView, attrs); err != nil {
		if rc.Response != nil {
			http.Error(rc.Response, http.StatusText(attrs.Status), attrs.Status)
		}
		return fmt.Errorf("forward to %s view: %w", ErrorView, err)
	}
	return nil
}
