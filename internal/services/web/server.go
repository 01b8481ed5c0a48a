// Package web hosts the browser-facing modelhub service.
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/modelhub/internal/core/identity"
	"github.com/louisbranch/modelhub/internal/core/model"
	"github.com/louisbranch/modelhub/internal/core/report"
	"github.com/louisbranch/modelhub/internal/platform/httpx"
	"github.com/louisbranch/modelhub/internal/platform/observability"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
	"github.com/louisbranch/modelhub/internal/platform/sessiontoken"
	"github.com/louisbranch/modelhub/internal/platform/timeouts"
	"github.com/louisbranch/modelhub/internal/view"
)

// Config defines startup inputs for the web service.
type Config struct {
	HTTPAddr        string
	SearchScript    string
	ShowDiagnostics bool
	// IdentityStore resolves display names; nil makes everyone anonymous.
	IdentityStore identity.Store
	// Sessions verifies session tokens; nil disables authentication.
	Sessions *sessiontoken.Manager
	// Catalog is populated by the caller; nil seeds the demo catalog.
	Catalog func(*Catalog)
	Logger  *log.Logger
}

// Server hosts the web HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewHandler composes models, providers and middleware into one handler.
func NewHandler(cfg Config) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	registry, err := newRegistry(cfg.SearchScript, logger)
	if err != nil {
		return nil, err
	}
	renderer := view.NewRenderer(view.WithDiagnostics(cfg.ShowDiagnostics))
	core := model.NewCore(model.Deps{
		Registry: registry,
		Reporter: report.New(renderer, report.WithLogger(logger)),
		Identity: identity.NewResolver(cfg.IdentityStore),
	})
	catalog := NewCatalog(core)
	if cfg.Catalog != nil {
		cfg.Catalog(catalog)
	} else {
		catalog.SeedDemo()
	}

	h := &handlers{core: core, catalog: catalog, renderer: renderer, logger: logger}
	mux := http.NewServeMux()
	h.routes(mux)

	sessions := cfg.Sessions
	if sessions == nil {
		sessions = sessiontoken.NewManager(sessiontoken.Config{})
	}
	return httpx.Chain(mux,
		httpx.RecoverPanic(logger),
		httpx.RequestID(),
		observability.RequestLogger(logger),
		sessions.Middleware(logger),
		bindRequestContext(),
	), nil
}

// bindRequestContext gives every call its own request context carrying the
// principal set by the session middleware.
func bindRequestContext() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bound, _ := requestctx.Bind(w, r, requestctx.UserIDFromContext(r.Context()))
			next.ServeHTTP(w, bound)
		})
	}
}

// NewServer validates config and constructs a web server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose web handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic until ctx is canceled or the server stops.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown web http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
