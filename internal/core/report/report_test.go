package report

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbranch/modelhub/internal/core/guard"
	"github.com/louisbranch/modelhub/internal/core/search"
	apperrors "github.com/louisbranch/modelhub/internal/platform/errors"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
	"github.com/louisbranch/modelhub/internal/view"
)

type subject string

func (s subject) DisplayName() string { return string(s) }

type forwardCall struct {
	subject search.Subject
	view    string
	attrs   view.Attributes
}

type recordingRenderer struct {
	calls []forwardCall
	err   error
}

func (r *recordingRenderer) Forward(w http.ResponseWriter, _ *http.Request, s search.Subject, name string, attrs view.Attributes) error {
	r.calls = append(r.calls, forwardCall{subject: s, view: name, attrs: attrs})
	if r.err != nil {
		return r.err
	}
	w.WriteHeader(attrs.Status)
	return nil
}

func newRC() (*httptest.ResponseRecorder, *requestctx.Context) {
	rec := httptest.NewRecorder()
	_, rc := requestctx.Bind(rec, httptest.NewRequest(http.MethodGet, "/x", nil), "")
	return rec, rc
}

func TestReportMessagePreFlag(t *testing.T) {
	t.Parallel()

	for _, pre := range []bool{true, false} {
		renderer := &recordingRenderer{}
		_, rc := newRC()
		if err := New(renderer).ReportMessage(rc, subject("alpha"), "line1\nline2", pre); err != nil {
			t.Fatalf("ReportMessage() error = %v", err)
		}
		if len(renderer.calls) != 1 {
			t.Fatalf("forwards = %d, want 1", len(renderer.calls))
		}
		call := renderer.calls[0]
		if call.view != "error" {
			t.Fatalf("view = %q, want %q", call.view, "error")
		}
		m := call.attrs.Map()
		if m["message"] != "line1\nline2" {
			t.Fatalf("message = %v", m["message"])
		}
		_, hasPre := m["pre"]
		if hasPre != pre {
			t.Fatalf("pre present = %v, want %v", hasPre, pre)
		}
		if _, ok := m["exception"]; ok {
			t.Fatalf("exception present for message report")
		}
		if call.attrs.Status != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", call.attrs.Status, http.StatusBadRequest)
		}
	}
}

func TestReportAttachesException(t *testing.T) {
	t.Parallel()

	renderer := &recordingRenderer{}
	rec, rc := newRC()
	cause := apperrors.E(apperrors.KindNotFound, "project missing")
	if err := New(renderer).Report(rc, subject("alpha"), cause); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	call := renderer.calls[0]
	if call.attrs.Message != "project missing" {
		t.Fatalf("message = %q", call.attrs.Message)
	}
	if !errors.Is(call.attrs.Exception, cause) {
		t.Fatalf("exception = %v, want %v", call.attrs.Exception, cause)
	}
	if call.attrs.Pre {
		t.Fatalf("pre = true, want false")
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if call.subject != subject("alpha") {
		t.Fatalf("subject = %v, want alpha", call.subject)
	}
}

func TestReportPlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	renderer := &recordingRenderer{}
	_, rc := newRC()
	if err := New(renderer).Report(rc, nil, errors.New("boom")); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := renderer.calls[0].attrs.Status; got != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestReportNilErrorIsNoop(t *testing.T) {
	t.Parallel()

	renderer := &recordingRenderer{}
	_, rc := newRC()
	if err := New(renderer).Report(rc, nil, nil); err != nil {
		t.Fatalf("Report(nil) error = %v", err)
	}
	if len(renderer.calls) != 0 || rc.Committed() {
		t.Fatalf("nil error forwarded")
	}
}

func TestSecondReportIsRejected(t *testing.T) {
	t.Parallel()

	renderer := &recordingRenderer{}
	_, rc := newRC()
	reporter := New(renderer)
	if err := reporter.ReportMessage(rc, nil, "first", false); err != nil {
		t.Fatalf("first report error = %v", err)
	}
	if err := reporter.Report(rc, nil, errors.New("second")); !errors.Is(err, ErrAlreadyForwarded) {
		t.Fatalf("second report error = %v, want %v", err, ErrAlreadyForwarded)
	}
	if len(renderer.calls) != 1 {
		t.Fatalf("forwards = %d, want 1", len(renderer.calls))
	}
}

func TestReportCurrentUsesAmbientContext(t *testing.T) {
	t.Parallel()

	renderer := &recordingRenderer{}
	_, rc := newRC()
	ctx := requestctx.With(context.Background(), rc)
	if err := New(renderer).ReportCurrentMessage(ctx, nil, "ambient", true); err != nil {
		t.Fatalf("ReportCurrentMessage() error = %v", err)
	}
	if len(renderer.calls) != 1 || !renderer.calls[0].attrs.Pre {
		t.Fatalf("calls = %+v, want one pre report", renderer.calls)
	}
}

func TestReportCurrentWithoutContextIsLoggedNoop(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	renderer := &recordingRenderer{}
	reporter := New(renderer, WithLogger(log.New(&logs, "", 0)))
	if err := reporter.ReportCurrent(context.Background(), subject("alpha"), errors.New("boom")); err != nil {
		t.Fatalf("ReportCurrent() error = %v", err)
	}
	if err := reporter.ReportCurrentMessage(context.Background(), nil, "msg", false); err != nil {
		t.Fatalf("ReportCurrentMessage() error = %v", err)
	}
	if len(renderer.calls) != 0 {
		t.Fatalf("forwards = %d, want 0", len(renderer.calls))
	}
	if strings.Count(logs.String(), "error report dropped") != 2 {
		t.Fatalf("logs = %q", logs.String())
	}
}

func TestReportRendererFailureIsWrapped(t *testing.T) {
	t.Parallel()

	renderErr := errors.New("template broke")
	rec, rc := newRC()
	err := New(&recordingRenderer{err: renderErr}).ReportMessage(rc, nil, "x", false)
	if !errors.Is(err, renderErr) {
		t.Fatalf("error = %v, want %v", err, renderErr)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), http.StatusText(http.StatusBadRequest)) {
		t.Fatalf("body = %q, want fallback status text", rec.Body.String())
	}
	if !rc.Committed() {
		t.Fatal("request context not committed")
	}
}

func TestReportMethodErrorSetsAllow(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req, rc := requestctx.Bind(rec, httptest.NewRequest(http.MethodGet, "/x/delete", nil), "")
	methodErr := guard.RequirePOST(req.Context())
	if methodErr == nil {
		t.Fatal("RequirePOST() error = nil for GET")
	}
	if err := New(&recordingRenderer{}).Report(rc, subject("x"), methodErr); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodPost {
		t.Fatalf("Allow = %q, want %q", got, http.MethodPost)
	}

	rec, rc = newRC()
	if err := New(&recordingRenderer{}).Report(rc, subject("x"), errors.New("boom")); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := rec.Header().Get("Allow"); got != "" {
		t.Fatalf("Allow = %q, want empty", got)
	}
}

func TestReportRendersThroughTemplRenderer(t *testing.T) {
	t.Parallel()

	rec, rc := newRC()
	if err := New(view.NewRenderer()).ReportMessage(rc, subject("alpha"), "bad filter", true); err != nil {
		t.Fatalf("ReportMessage() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), `<pre class="message">bad filter</pre>`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
