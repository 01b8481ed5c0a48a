package search

import (
	"fmt"
	"strings"
)

// Entry is one (token, target) pair of a search index. Target is a path
// relative to the subject that owns the index; "" is the subject itself.
type Entry struct {
	Token  string
	Target string
}

// Index is an ordered, immutable set of entries.
type Index struct {
	entries []Entry
}

// Entries returns a copy of the index entries in insertion order.
func (i Index) Entries() []Entry {
	out := make([]Entry, len(i.entries))
	copy(out, i.entries)
	return out
}

// Len returns the number of entries.
func (i Index) Len() int {
	return len(i.entries)
}

// Lookup returns entries whose token equals token, ignoring case.
func (i Index) Lookup(token string) []Entry {
	want := Fold(token)
	if want == "" {
		return nil
	}
	var out []Entry
	for _, entry := range i.entries {
		if Fold(entry.Token) == want {
			out = append(out, entry)
		}
	}
	return out
}

// Suggest returns entries whose token contains query, ignoring case.
// Exact matches come first, then prefix matches, then the rest, each group
// in index order. limit <= 0 means no limit.
func (i Index) Suggest(query string, limit int) []Entry {
	q := Fold(query)
	if q == "" {
		return nil
	}
	var exact, prefix, contains []Entry
	for _, entry := range i.entries {
		token := Fold(entry.Token)
		switch {
		case token == q:
			exact = append(exact, entry)
		case strings.HasPrefix(token, q):
			prefix = append(prefix, entry)
		case strings.Contains(token, q):
			contains = append(contains, entry)
		}
	}
	out := append(append(exact, prefix...), contains...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Contributor is implemented by subjects that enumerate their own
// searchable entries.
type Contributor interface {
	ContributeIndex(b *IndexBuilder) error
}

// IndexBuilder accumulates entries for one index.
type IndexBuilder struct {
	prefix  string
	entries []Entry
	err     error
}

// NewIndexBuilder returns an empty builder.
func NewIndexBuilder() *IndexBuilder {
	return &IndexBuilder{}
}

// Add appends one entry. Blank tokens are ignored.
func (b *IndexBuilder) Add(token, target string) *IndexBuilder {
	token = strings.TrimSpace(token)
	if token == "" {
		return b
	}
	b.entries = append(b.entries, Entry{Token: token, Target: joinTarget(b.prefix, target)})
	return b
}

// AddAll asks c to add its own entries. The first contributor error is kept
// and later contributions are skipped.
func (b *IndexBuilder) AddAll(c Contributor) *IndexBuilder {
	if c == nil || b.err != nil {
		return b
	}
	if err := c.ContributeIndex(b); err != nil {
		b.err = fmt.Errorf("build search index: %w", err)
	}
	return b
}

// AddNested adds the entries of a sub-object with their targets rooted
// under target.
func (b *IndexBuilder) AddNested(target string, c Contributor) *IndexBuilder {
	if c == nil || b.err != nil {
		return b
	}
	child := &IndexBuilder{prefix: joinTarget(b.prefix, target)}
	child.AddAll(c)
	b.entries = append(b.entries, child.entries...)
	b.err = child.err
	return b
}

// Build returns the accumulated index or the first contributor error.
func (b *IndexBuilder) Build() (Index, error) {
	if b.err != nil {
		return Index{}, b.err
	}
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return Index{entries: entries}, nil
}

// Indexer builds the index of a subject.
type Indexer interface {
	BuildIndex(subject Subject) (Index, error)
}

// IndexerFunc adapts a function to Indexer.
type IndexerFunc func(Subject) (Index, error)

// BuildIndex calls f.
func (f IndexerFunc) BuildIndex(subject Subject) (Index, error) {
	return f(subject)
}

// BuildIndex builds a fresh index from the subject's current state. A
// subject that contributes nothing yields an empty index.
func BuildIndex(subject Subject) (Index, error) {
	b := NewIndexBuilder()
	if c, ok := subject.(Contributor); ok {
		b.AddAll(c)
	}
	return b.Build()
}

func joinTarget(prefix, target string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	target = strings.Trim(strings.TrimSpace(target), "/")
	switch {
	case prefix == "":
		return target
	case target == "":
		return prefix
	default:
		return prefix + "/" + target
	}
}
