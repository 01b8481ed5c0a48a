package web

import (
	"sort"
	"strings"
	"sync"

	"github.com/louisbranch/modelhub/internal/core/model"
)

// Catalog holds the in-memory models served by the web service.
type Catalog struct {
	core *model.Core

	mu       sync.RWMutex
	projects map[string]*Project
	agents   map[string]*Agent
}

// NewCatalog returns an empty catalog whose models share core.
func NewCatalog(core *model.Core) *Catalog {
	return &Catalog{
		core:     core,
		projects: map[string]*Project{},
		agents:   map[string]*Agent{},
	}
}

// Dashboard returns the root model.
func (c *Catalog) Dashboard() *Dashboard {
	return &Dashboard{Core: c.core, catalog: c}
}

// PutProject adds or replaces a project.
func (c *Catalog) PutProject(p Project) *Project {
	p.Core = c.core
	p.Name = strings.TrimSpace(p.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[p.Name] = &p
	return &p
}

// PutAgent adds or replaces an agent.
func (c *Catalog) PutAgent(a Agent) *Agent {
	a.Core = c.core
	a.Name = strings.TrimSpace(a.Name)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents[a.Name] = &a
	return &a
}

// Project returns the named project.
func (c *Catalog) Project(name string) (*Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.projects[name]
	return p, ok
}

// Agent returns the named agent.
func (c *Catalog) Agent(name string) (*Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[name]
	return a, ok
}

// DeleteProject removes the named project and reports whether it existed.
func (c *Catalog) DeleteProject(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.projects[name]; !ok {
		return false
	}
	delete(c.projects, name)
	return true
}

// Projects returns projects sorted by name.
func (c *Catalog) Projects() []*Project {
	c.mu.RLock()
	out := make([]*Project, 0, len(c.projects))
	for _, p := range c.projects {
		out = append(out, p)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Agents returns agents sorted by name.
func (c *Catalog) Agents() []*Agent {
	c.mu.RLock()
	out := make([]*Agent, 0, len(c.agents))
	for _, a := range c.agents {
		out = append(out, a)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SeedDemo fills the catalog with sample projects and agents.
func (c *Catalog) SeedDemo() {
	c.PutProject(Project{
		Name:        "alpha",
		Description: "Payments API",
		Tags:        []string{"go", "api"},
		Builds: []Build{
			{Number: 12, Branch: "main", Status: "passed"},
			{Number: 13, Branch: "feature/refunds", Status: "failed"},
		},
	})
	c.PutProject(Project{
		Name:        "beta",
		Description: "Web frontend",
		Tags:        []string{"web"},
		Builds:      []Build{{Number: 7, Branch: "main", Status: "passed"}},
	})
	c.PutAgent(Agent{
		Name: "runner-linux", OS: "linux", Arch: "amd64", Online: true,
		Labels: []string{"docker", "large"},
		Jobs: []Job{
			{ID: 101, Project: "alpha", Status: "passed", Attempts: 1},
			{ID: 102, Project: "alpha", Status: "failed", Attempts: 3},
		},
	})
	c.PutAgent(Agent{
		Name: "runner-mac", OS: "darwin", Arch: "arm64",
		Labels: []string{"xcode"},
		Jobs:   []Job{{ID: 201, Project: "beta", Status: "passed", Attempts: 1}},
	})
}
