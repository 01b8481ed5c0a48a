package web

import (
	"strconv"
	"strings"

	"github.com/louisbranch/modelhub/internal/core/model"
	"github.com/louisbranch/modelhub/internal/core/search"
	"github.com/louisbranch/modelhub/internal/core/search/provider/filter"
)

// Build is one CI run of a project.
type Build struct {
	Number int
	Branch string
	Status string
}

// Project is a buildable project.
type Project struct {
	*model.Core
	Name        string
	Description string
	Tags        []string
	Builds      []Build
}

// DisplayName implements search.Subject.
func (p *Project) DisplayName() string { return p.Name }

// SearchKind names the model kind for search scripts.
func (p *Project) SearchKind() string { return "project" }

// ContributeIndex indexes the project name, tags and builds.
func (p *Project) ContributeIndex(b *search.IndexBuilder) error {
	b.Add(p.Name, "")
	for _, tag := range p.Tags {
		b.Add(tag, "")
	}
	b.AddNested("builds", buildIndex(p.Builds))
	return nil
}

// Build returns the build numbered number.
func (p *Project) Build(number int) (Build, bool) {
	for _, build := range p.Builds {
		if build.Number == number {
			return build, true
		}
	}
	return Build{}, false
}

type buildIndex []Build

func (builds buildIndex) ContributeIndex(b *search.IndexBuilder) error {
	for _, build := range builds {
		target := strconv.Itoa(build.Number)
		b.Add("#"+target, target)
		b.Add(build.Branch, target)
	}
	return nil
}

// Job is one unit of work an agent ran.
type Job struct {
	ID       int
	Project  string
	Status   string
	Attempts int
}

// Agent is a build executor.
type Agent struct {
	*model.Core
	Name   string
	OS     string
	Arch   string
	Online bool
	Labels []string
	Jobs   []Job
}

// DisplayName implements search.Subject.
func (a *Agent) DisplayName() string { return a.Name }

// SearchKind names the model kind for search scripts.
func (a *Agent) SearchKind() string { return "agent" }

// Job returns the job with id.
func (a *Agent) Job(id int) (Job, bool) {
	for _, job := range a.Jobs {
		if job.ID == id {
			return job, true
		}
	}
	return Job{}, false
}

// FilterFields exposes agent attributes to filter queries.
func (a *Agent) FilterFields() filter.Fields {
	return filter.Fields{
		"name":   a.Name,
		"os":     a.OS,
		"arch":   a.Arch,
		"online": a.Online,
		"labels": strings.Join(a.Labels, ","),
	}
}

// FilterItems exposes the agent's jobs to filter queries.
func (a *Agent) FilterItems() []filter.Item {
	items := make([]filter.Item, 0, len(a.Jobs))
	for _, job := range a.Jobs {
		id := strconv.Itoa(job.ID)
		items = append(items, filter.Item{
			Token:  "job " + id,
			Target: "jobs/" + id,
			Fields: filter.Fields{
				"job":      job.ID,
				"project":  job.Project,
				"status":   job.Status,
				"attempts": job.Attempts,
			},
		})
	}
	return items
}

// Dashboard is the root object. Its index spans the whole catalog.
type Dashboard struct {
	*model.Core
	catalog *Catalog
}

// DisplayName implements search.Subject.
func (d *Dashboard) DisplayName() string { return "Dashboard" }

// SearchKind names the model kind for search scripts.
func (d *Dashboard) SearchKind() string { return "dashboard" }

// ContributeIndex indexes every project and agent.
func (d *Dashboard) ContributeIndex(b *search.IndexBuilder) error {
	for _, project := range d.catalog.Projects() {
		b.AddNested("projects/"+project.Name, project)
	}
	for _, agent := range d.catalog.Agents() {
		b.Add(agent.Name, "agents/"+agent.Name)
	}
	return nil
}
