// Package capability resolves optional search capabilities for model
// objects from an ordered list of providers.
package capability

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/louisbranch/modelhub/internal/core/search"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/modelhub/internal/core/capability"

// DefaultSource names the trivial fallback in resolution results.
const DefaultSource = "default"

// ErrSealed is returned when registering after the registry was sealed.
var ErrSealed = errors.New("capability registry is sealed")

// errNilCapability marks a provider that claimed a subject without a
// capability.
var errNilCapability = errors.New("provider returned a nil capability")

// Provider offers a capability for the subjects it accepts.
type Provider interface {
	Name() string
	// TryResolve returns ok=false when the provider does not handle subject.
	TryResolve(subject search.Subject) (search.Capability, bool, error)
}

// Resolution is the outcome of one Resolve call.
type Resolution struct {
	Capability search.Capability
	// Source is the winning provider name or DefaultSource.
	Source string
	// Skipped names providers that failed and were passed over.
	Skipped []string
}

// Registry holds providers in priority order.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	sealed    bool
	logger    *log.Logger
	tracer    trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for provider failures.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for resolution spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithProviders registers providers in order at construction.
func WithProviders(providers ...Provider) Option {
	return func(r *Registry) {
		for _, p := range providers {
			if p != nil {
				r.providers = append(r.providers, p)
			}
		}
	}
}

// NewRegistry builds an unsealed registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: log.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends p at the lowest priority.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return errors.New("capability provider is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("register %q: %w", p.Name(), ErrSealed)
	}
	r.providers = append(r.providers, p)
	return nil
}

// Seal ends the registration phase.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether registration has ended.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Providers returns provider names in priority order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Resolve returns the capability of the first provider that accepts
// subject, or the trivial default.
func (r *Registry) Resolve(ctx context.Context, subject search.Subject) search.Capability {
	return r.ResolveDetailed(ctx, subject).Capability
}

// ResolveDetailed is Resolve plus the winning source and skipped providers.
// Failing providers are logged and skipped; later providers are not
// consulted once one accepts.
func (r *Registry) ResolveDetailed(ctx context.Context, subject search.Subject) Resolution {
	if ctx == nil {
		ctx = context.Background()
	}
	providers := r.snapshot()

	_, span := r.tracer.Start(ctx, "capability.resolve", trace.WithAttributes(
		attribute.String("capability.subject", search.SearchName(subject)),
		attribute.Int("capability.providers", len(providers)),
	))
	defer span.End()

	var skipped []string
	for _, p := range providers {
		name := providerName(p)
		capability, ok, err := tryResolve(p, subject)
		if err == nil && ok && capability == nil {
			err = errNilCapability
		}
		if err != nil {
			r.logger.Printf("capability provider failed provider=%s subject=%q err=%v", name, search.SearchName(subject), err)
			span.AddEvent("provider.failed", trace.WithAttributes(
				attribute.String("capability.provider", name),
				attribute.String("error", err.Error()),
			))
			skipped = append(skipped, name)
			continue
		}
		if !ok {
			continue
		}
		span.SetAttributes(attribute.String("capability.source", name))
		span.SetStatus(codes.Ok, "")
		return Resolution{Capability: capability, Source: name, Skipped: skipped}
	}

	span.SetAttributes(attribute.String("capability.source", DefaultSource))
	return Resolution{Capability: search.Default(subject), Source: DefaultSource, Skipped: skipped}
}

// snapshot seals the registry and returns its providers.
func (r *Registry) snapshot() []Provider {
	r.mu.RLock()
	if r.sealed {
		providers := r.providers
		r.mu.RUnlock()
		return providers
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return r.providers
}

func tryResolve(p Provider, subject search.Subject) (capability search.Capability, ok bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			capability, ok = nil, false
			err = fmt.Errorf("provider panic: %v", recovered)
		}
	}()
	return p.TryResolve(subject)
}

func providerName(p Provider) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", p)
		}
	}()
	if name = strings.TrimSpace(p.Name()); name == "" {
		name = fmt.Sprintf("%T", p)
	}
	return name
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc struct {
	ProviderName string
	Resolve      func(search.Subject) (search.Capability, bool, error)
}

// Name returns the provider name.
func (f ProviderFunc) Name() string { return f.ProviderName }

// TryResolve calls Resolve; a nil Resolve accepts nothing.
func (f ProviderFunc) TryResolve(subject search.Subject) (search.Capability, bool, error) {
	if f.Resolve == nil {
		return nil, false, nil
	}
	return f.Resolve(subject)
}
