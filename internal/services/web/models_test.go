package web

import (
	"context"
	"testing"

	"github.com/louisbranch/modelhub/internal/core/model"
	"github.com/louisbranch/modelhub/internal/core/search"
)

func TestProjectIndex(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(model.NewCore(model.Deps{}))
	project := catalog.PutProject(Project{
		Name:   "alpha",
		Tags:   []string{"go"},
		Builds: []Build{{Number: 12, Branch: "main"}},
	})
	index, err := project.SearchIndex(project)
	if err != nil {
		t.Fatalf("SearchIndex() error = %v", err)
	}
	want := []search.Entry{
		{Token: "alpha"},
		{Token: "go"},
		{Token: "#12", Target: "builds/12"},
		{Token: "main", Target: "builds/12"},
	}
	got := index.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Entries()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDashboardIndexNestsProjects(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(model.NewCore(model.Deps{}))
	catalog.SeedDemo()
	dashboard := catalog.Dashboard()
	index, err := search.BuildIndex(dashboard)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if got := index.Lookup("#7"); len(got) != 1 || got[0].Target != "projects/beta/builds/7" {
		t.Fatalf("Lookup(#7) = %+v", got)
	}
	if got := index.Lookup("runner-mac"); len(got) != 1 || got[0].Target != "agents/runner-mac" {
		t.Fatalf("Lookup(runner-mac) = %+v", got)
	}
}

func TestModelsWithoutProvidersUseDefault(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(model.NewCore(model.Deps{}))
	agent := catalog.PutAgent(Agent{Name: "runner-x"})
	capability := agent.Search(context.Background(), agent)
	if !search.IsDefault(capability) {
		t.Fatalf("Search() = %T, want default", capability)
	}
	if ok, _ := capability.Match("runner"); !ok {
		t.Fatal("Match(runner) = false, want true")
	}
}

func TestCatalogDelete(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(model.NewCore(model.Deps{}))
	catalog.SeedDemo()
	if !catalog.DeleteProject("alpha") {
		t.Fatal("DeleteProject(alpha) = false")
	}
	if catalog.DeleteProject("alpha") {
		t.Fatal("second DeleteProject(alpha) = true")
	}
	if got := len(catalog.Projects()); got != 1 {
		t.Fatalf("Projects() len = %d, want 1", got)
	}
}
