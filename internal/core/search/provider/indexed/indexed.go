// Package indexed offers search over the entries a subject contributes to
// its own index.
package indexed

import (
	"github.com/louisbranch/modelhub/internal/core/search"
)

// Name identifies the provider.
const Name = "indexed"

// DefaultLimit caps Find results.
const DefaultLimit = 50

// Provider accepts every subject that contributes index entries.
type Provider struct {
	indexer search.Indexer
	limit   int
}

// New builds a Provider. A nil indexer uses search.BuildIndex.
func New(indexer search.Indexer, limit int) *Provider {
	if indexer == nil {
		indexer = search.IndexerFunc(search.BuildIndex)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Provider{indexer: indexer, limit: limit}
}

// Name returns the provider name.
func (p *Provider) Name() string { return Name }

// TryResolve accepts subjects implementing search.Contributor.
func (p *Provider) TryResolve(subject search.Subject) (search.Capability, bool, error) {
	if _, ok := subject.(search.Contributor); !ok {
		return nil, false, nil
	}
	return &capability{subject: subject, indexer: p.indexer, limit: p.limit}, true, nil
}

type capability struct {
	subject search.Subject
	indexer search.Indexer
	limit   int
}

// Match reports whether any index token contains query.
func (c *capability) Match(query string) (bool, error) {
	entries, err := c.find(query, 1)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// Find returns suggestions from an index built for this call.
func (c *capability) Find(query string) ([]search.Entry, error) {
	return c.find(query, c.limit)
}

func (c *capability) find(query string, limit int) ([]search.Entry, error) {
	index, err := c.indexer.BuildIndex(c.subject)
	if err != nil {
		return nil, err
	}
	return index.Suggest(query, limit), nil
}
