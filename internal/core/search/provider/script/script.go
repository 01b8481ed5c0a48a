// Package script offers search capabilities defined by a Lua script.
//
// The script must define two global functions:
//
//	function accepts(kind, name) return kind == "project" end
//	function match(name, query) return string.find(name, query, 1, true) ~= nil end
//
// accepts decides whether the script handles a subject; match answers
// queries for the subjects it accepted.
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/modelhub/internal/core/search"
)

// Name identifies the provider.
const Name = "script"

const (
	acceptsFunc = "accepts"
	matchFunc   = "match"
)

// Kinded subjects name their model kind for scripts.
type Kinded interface {
	SearchKind() string
}

// KindOf returns the kind passed to scripts, "object" when unknown.
func KindOf(subject search.Subject) string {
	if kinded, ok := subject.(Kinded); ok {
		if kind := strings.TrimSpace(kinded.SearchKind()); kind != "" {
			return kind
		}
	}
	return "object"
}

// Provider evaluates one Lua state. Calls are serialized.
type Provider struct {
	name  string
	mu    sync.Mutex
	state *lua.State
}

// Load compiles the script at path.
func Load(path string) (*Provider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("script path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat script: %w", err)
	}
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	return newProvider(state)
}

// FromString compiles source.
func FromString(source string) (*Provider, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	if err := lua.DoString(state, source); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	return newProvider(state)
}

func newProvider(state *lua.State) (*Provider, error) {
	for _, fn := range []string{acceptsFunc, matchFunc} {
		state.Global(fn)
		defined := state.IsFunction(-1)
		state.Pop(1)
		if !defined {
			return nil, fmt.Errorf("script must define function %s", fn)
		}
	}
	return &Provider{name: Name, state: state}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// TryResolve asks the script whether it accepts subject.
func (p *Provider) TryResolve(subject search.Subject) (search.Capability, bool, error) {
	name := search.SearchName(subject)
	ok, err := p.call(acceptsFunc, KindOf(subject), name)
	if err != nil || !ok {
		return nil, false, err
	}
	return &capability{provider: p, name: name}, true, nil
}

// call invokes a global with two string arguments and returns its truth.
func (p *Provider) call(fn, a, b string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	top := p.state.Top()
	defer p.state.SetTop(top)

	p.state.Global(fn)
	p.state.PushString(a)
	p.state.PushString(b)
	if err := p.state.ProtectedCall(2, 1, 0); err != nil {
		return false, fmt.Errorf("lua %s: %w", fn, err)
	}
	return p.state.ToBoolean(-1), nil
}

type capability struct {
	provider *Provider
	name     string
}

// Match calls the script's match function. Blank queries match nothing.
func (c *capability) Match(query string) (bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return false, nil
	}
	return c.provider.call(matchFunc, c.name, query)
}

// Find returns the subject itself when Match succeeds.
func (c *capability) Find(query string) ([]search.Entry, error) {
	ok, err := c.Match(query)
	if err != nil || !ok {
		return nil, err
	}
	return []search.Entry{{Token: c.name}}, nil
}
