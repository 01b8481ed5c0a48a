package view

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/louisbranch/modelhub/internal/core/search"
	"golang.org/x/text/message"
)

type subject string

func (s subject) DisplayName() string { return string(s) }

func TestAttributesMapOmitsUnsetOptionals(t *testing.T) {
	t.Parallel()

	m := Attributes{Message: "boom"}.Map()
	if m["message"] != "boom" {
		t.Fatalf("message = %v, want boom", m["message"])
	}
	if _, ok := m["exception"]; ok {
		t.Fatalf("exception present, want absent")
	}
	if _, ok := m["pre"]; ok {
		t.Fatalf("pre present, want absent")
	}

	cause := errors.New("cause")
	m = Attributes{Message: "boom", Exception: cause, Pre: true}.Map()
	if m["exception"] != cause {
		t.Fatalf("exception = %v, want %v", m["exception"], cause)
	}
	if m["pre"] != true {
		t.Fatalf("pre = %v, want true", m["pre"])
	}
}

func TestForwardRendersErrorView(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/projects/alpha", nil)
	err := renderer.Forward(rec, req, subject("alpha"), ErrorView, Attributes{
		Message:   "line <1>\nline 2",
		Pre:       true,
		Exception: errors.New("secret stack"),
		Status:    http.StatusBadRequest,
	})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	body := rec.Body.String()
	for _, want := range []string{"<pre class=\"message\">line &lt;1&gt;\nline 2</pre>", "alpha", "Something went wrong", "Error | modelhub"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %s", want, body)
		}
	}
	if strings.Contains(body, "secret stack") {
		t.Fatalf("diagnostics rendered without opt-in: %s", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", got)
	}
}

func TestForwardPlainMessageAndDiagnostics(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(WithDiagnostics(true))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "pt-BR")
	err := renderer.Forward(rec, req, nil, ErrorView, Attributes{Message: "oops", Exception: errors.New("stack here")})
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{`<p class="message">oops</p>`, "stack here", "Algo deu errado", `lang="pt-BR"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %s", want, body)
		}
	}
}

func TestForwardUnknownView(t *testing.T) {
	t.Parallel()

	err := NewRenderer().Forward(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil, "missing", Attributes{})
	if !errors.Is(err, ErrUnknownView) {
		t.Fatalf("Forward() error = %v, want %v", err, ErrUnknownView)
	}
}

func TestWithViewRegistersCustomView(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(WithView("hello", func(s search.Subject, attrs map[string]any, _ *message.Printer, _ PageOptions) (string, templ.Component) {
		return "Hello", Text("hi " + s.DisplayName())
	}))
	rec := httptest.NewRecorder()
	if err := renderer.Forward(rec, httptest.NewRequest(http.MethodGet, "/", nil), subject("bob"), "hello", Attributes{}); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	if !strings.Contains(rec.Body.String(), "<p>hi bob</p>") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSearchResultsLinksEntries(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	entries := []search.Entry{{Token: "alpha", Target: ""}, {Token: "12", Target: "builds/12"}}
	p := message.NewPrinter(message.MatchLanguage("en"))
	if err := SearchResults(p, "alpha", "bu", "indexed", entries, "/projects/alpha").Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{`href="/projects/alpha"`, `href="/projects/alpha/builds/12"`, "Answered by indexed"} {
		if !strings.Contains(b.String(), want) {
			t.Fatalf("output missing %q: %s", want, b.String())
		}
	}
}

func TestLayoutPropagatesWriterErrors(t *testing.T) {
	t.Parallel()

	ctx := templ.WithChildren(context.Background(), Text("x"))
	if err := Layout("t", "en").Render(ctx, failingWriter{}); err == nil {
		t.Fatal("expected writer error")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }
