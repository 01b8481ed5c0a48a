// Package identity resolves the display name of the caller.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/modelhub/internal/platform/errors"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
)

// Anonymous is both the principal id and the display name of unauthenticated
// callers.
const Anonymous = "anonymous"

// ErrNotFound is returned by stores when a principal has no record.
var ErrNotFound = errors.New("identity not found")

// Store looks up display names by principal id.
type Store interface {
	LookupDisplayName(ctx context.Context, principalID string) (string, error)
}

// Identity is the caller of the current request.
type Identity struct {
	PrincipalID string
	DisplayName string
}

// IsAnonymous reports whether the caller is unauthenticated.
func (i Identity) IsAnonymous() bool {
	return i.PrincipalID == "" || i.PrincipalID == Anonymous
}

// Resolver maps the ambient principal to an Identity.
type Resolver struct {
	store Store
}

// NewResolver builds a Resolver over store. A nil store resolves every
// caller as anonymous.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// CurrentDisplayName returns the display name of the caller bound to ctx.
func (r *Resolver) CurrentDisplayName(ctx context.Context) (string, error) {
	id, err := r.Current(ctx)
	if err != nil {
		return "", err
	}
	return id.DisplayName, nil
}

// Current resolves the caller bound to ctx. Unauthenticated callers, missing
// records and blank names all resolve to Anonymous; other store failures
// are returned as unavailable.
func (r *Resolver) Current(ctx context.Context) (Identity, error) {
	return r.Lookup(ctx, requestctx.PrincipalFromContext(ctx))
}

// Lookup resolves principalID the same way Current does.
func (r *Resolver) Lookup(ctx context.Context, principalID string) (Identity, error) {
	principalID = strings.TrimSpace(principalID)
	if principalID == "" || principalID == Anonymous || r == nil || r.store == nil {
		return Identity{PrincipalID: Anonymous, DisplayName: Anonymous}, nil
	}
	name, err := r.store.LookupDisplayName(ctx, principalID)
	if errors.Is(err, ErrNotFound) {
		return Identity{PrincipalID: principalID, DisplayName: Anonymous}, nil
	}
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.KindUnavailable, "identity lookup failed", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = Anonymous
	}
	return Identity{PrincipalID: principalID, DisplayName: name}, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMemoryStore returns a store seeded with names.
func NewMemoryStore(names map[string]string) *MemoryStore {
	s := &MemoryStore{names: make(map[string]string, len(names))}
	for id, name := range names {
		s.names[id] = name
	}
	return s
}

// Put sets the display name of principalID.
func (s *MemoryStore) Put(principalID, displayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[principalID] = displayName
}

// LookupDisplayName returns ErrNotFound for unknown principals.
func (s *MemoryStore) LookupDisplayName(_ context.Context, principalID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[principalID]
	if !ok {
		return "", ErrNotFound
	}
	return name, nil
}
