package web

import (
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/modelhub/internal/core/capability"
	"github.com/louisbranch/modelhub/internal/core/search/provider/filter"
	"github.com/louisbranch/modelhub/internal/core/search/provider/indexed"
	"github.com/louisbranch/modelhub/internal/core/search/provider/script"
)

// newRegistry assembles providers in priority order: the optional search
// script, then filters, then index search. The registry is sealed on return.
func newRegistry(scriptPath string, logger *log.Logger) (*capability.Registry, error) {
	registry := capability.NewRegistry(capability.WithLogger(logger))
	if path := strings.TrimSpace(scriptPath); path != "" {
		provider, err := script.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load search script: %w", err)
		}
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	for _, provider := range []capability.Provider{filter.New(), indexed.New(nil, 0)} {
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	registry.Seal()
	logger.Printf("capability providers order=%s", strings.Join(registry.Providers(), ","))
	return registry, nil
}
