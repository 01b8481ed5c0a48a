package search

import (
	"errors"
	"testing"
)

type contributorFunc func(*IndexBuilder) error

func (f contributorFunc) ContributeIndex(b *IndexBuilder) error { return f(b) }

type project struct {
	name   string
	builds []string
}

func (p *project) DisplayName() string { return p.name }

func (p *project) ContributeIndex(b *IndexBuilder) error {
	b.Add(p.name, "")
	for _, build := range p.builds {
		b.AddNested("builds", contributorFunc(func(nb *IndexBuilder) error {
			nb.Add(build, build)
			return nil
		}))
	}
	return nil
}

func TestBuildIndexFromContributor(t *testing.T) {
	t.Parallel()

	p := &project{name: "alpha", builds: []string{"12", "13"}}
	index, err := BuildIndex(p)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	want := []Entry{
		{Token: "alpha", Target: ""},
		{Token: "12", Target: "builds/12"},
		{Token: "13", Target: "builds/13"},
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

func TestBuildIndexReflectsCurrentState(t *testing.T) {
	t.Parallel()

	p := &project{name: "alpha"}
	first, err := BuildIndex(p)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	p.builds = append(p.builds, "99")
	second, err := BuildIndex(p)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if first.Len() != 1 || second.Len() != 2 {
		t.Fatalf("Len() = %d then %d, want 1 then 2", first.Len(), second.Len())
	}
}

func TestBuildIndexWithoutContributorIsEmpty(t *testing.T) {
	t.Parallel()

	index, err := BuildIndex(plain("nothing"))
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if index.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", index.Len())
	}
	if entries := index.Entries(); entries == nil || len(entries) != 0 {
		t.Fatalf("Entries() = %#v, want empty non-nil", entries)
	}
}

func TestBuilderKeepsFirstContributorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	b := NewIndexBuilder().
		AddAll(contributorFunc(func(*IndexBuilder) error { calls++; return boom })).
		AddAll(contributorFunc(func(*IndexBuilder) error { calls++; return nil }))
	if _, err := b.Build(); !errors.Is(err, boom) {
		t.Fatalf("Build() error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Fatalf("contributor calls = %d, want 1", calls)
	}
}

func TestBuilderIgnoresBlankTokens(t *testing.T) {
	t.Parallel()

	index, err := NewIndexBuilder().Add("  ", "x").Add("ok", "/y/").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	entries := index.Entries()
	if len(entries) != 1 || entries[0] != (Entry{Token: "ok", Target: "y"}) {
		t.Fatalf("Entries() = %+v, want [{ok y}]", entries)
	}
}

func TestIndexLookupAndSuggest(t *testing.T) {
	t.Parallel()

	index, err := NewIndexBuilder().
		Add("release-build", "a").
		Add("Build", "b").
		Add("builder", "c").
		Add("deploy", "d").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := index.Lookup("BUILD"); len(got) != 1 || got[0].Target != "b" {
		t.Fatalf("Lookup() = %+v, want target b", got)
	}
	if got := index.Lookup(""); got != nil {
		t.Fatalf("Lookup(\"\") = %+v, want nil", got)
	}

	got := index.Suggest("build", 0)
	wantTargets := []string{"b", "c", "a"}
	if len(got) != len(wantTargets) {
		t.Fatalf("Suggest() = %+v, want targets %v", got, wantTargets)
	}
	for i, target := range wantTargets {
		if got[i].Target != target {
			t.Fatalf("Suggest()[%d].Target = %q, want %q", i, got[i].Target, target)
		}
	}
	if got := index.Suggest("build", 2); len(got) != 2 {
		t.Fatalf("Suggest(limit 2) len = %d, want 2", len(got))
	}
}

func TestIndexEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	index, _ := NewIndexBuilder().Add("a", "").Build()
	entries := index.Entries()
	entries[0].Token = "mutated"
	if index.Entries()[0].Token != "a" {
		t.Fatalf("index mutated through Entries()")
	}
}

func TestIndexerFunc(t *testing.T) {
	t.Parallel()

	var indexer Indexer = IndexerFunc(BuildIndex)
	index, err := indexer.BuildIndex(&project{name: "x"})
	if err != nil || index.Len() != 1 {
		t.Fatalf("BuildIndex() = %d entries, %v; want 1, nil", index.Len(), err)
	}
}
