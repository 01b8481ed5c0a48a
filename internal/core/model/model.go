// Package model holds the behavior every concrete model object shares.
package model

import (
	"context"

	"github.com/louisbranch/modelhub/internal/core/capability"
	"github.com/louisbranch/modelhub/internal/core/guard"
	"github.com/louisbranch/modelhub/internal/core/identity"
	"github.com/louisbranch/modelhub/internal/core/report"
	"github.com/louisbranch/modelhub/internal/core/search"
	"github.com/louisbranch/modelhub/internal/platform/requestctx"
)

// Core is embedded by concrete models. Its collaborators are shared by all
// models of one process.
type Core struct {
	indexer  search.Indexer
	registry *capability.Registry
	reporter *report.Reporter
	identity *identity.Resolver
}

// Deps are the collaborators of Core.
type Deps struct {
	Indexer  search.Indexer
	Registry *capability.Registry
	Reporter *report.Reporter
	Identity *identity.Resolver
}

// NewCore builds a Core. Missing collaborators fall back to an index built
// from the subject, an empty registry and an anonymous-only resolver.
func NewCore(deps Deps) *Core {
	c := &Core{
		indexer:  deps.Indexer,
		registry: deps.Registry,
		reporter: deps.Reporter,
		identity: deps.Identity,
	}
	if c.indexer == nil {
		c.indexer = search.IndexerFunc(search.BuildIndex)
	}
	if c.registry == nil {
		c.registry = capability.NewRegistry()
	}
	if c.identity == nil {
		c.identity = identity.NewResolver(nil)
	}
	return c
}

// SearchIndex builds a fresh index for subject.
func (c *Core) SearchIndex(subject search.Subject) (search.Index, error) {
	return c.indexer.BuildIndex(subject)
}

// Search resolves the search capability of subject.
func (c *Core) Search(ctx context.Context, subject search.Subject) search.Capability {
	return c.registry.Resolve(ctx, subject)
}

// SearchDetailed resolves the capability and reports which provider answered.
func (c *Core) SearchDetailed(ctx context.Context, subject search.Subject) capability.Resolution {
	return c.registry.ResolveDetailed(ctx, subject)
}

// SearchName returns the name subject is searched by.
func (c *Core) SearchName(subject search.Subject) string {
	return search.SearchName(subject)
}

// SendError forwards err to the error view of the request bound to ctx.
func (c *Core) SendError(ctx context.Context, subject search.Subject, err error) error {
	if c.reporter == nil {
		return err
	}
	return c.reporter.ReportCurrent(ctx, subject, err)
}

// SendErrorTo forwards err to the error view of rc.
func (c *Core) SendErrorTo(rc *requestctx.Context, subject search.Subject, err error) error {
	if c.reporter == nil {
		return err
	}
	return c.reporter.Report(rc, subject, err)
}

// SendMessage forwards message to the error view of the request bound to ctx.
func (c *Core) SendMessage(ctx context.Context, subject search.Subject, message string) error {
	if c.reporter == nil {
		return nil
	}
	return c.reporter.ReportCurrentMessage(ctx, subject, message, false)
}

// SendMessageTo forwards message to the error view of rc, preformatted when
// pre is set.
func (c *Core) SendMessageTo(rc *requestctx.Context, subject search.Subject, message string, pre bool) error {
	if c.reporter == nil {
		return nil
	}
	return c.reporter.ReportMessage(rc, subject, message, pre)
}

// RequirePOST fails unless the request bound to ctx is a POST.
func (c *Core) RequirePOST(ctx context.Context) error {
	return guard.RequirePOST(ctx)
}

// CurrentUser returns the display name of the caller.
func (c *Core) CurrentUser(ctx context.Context) (string, error) {
	return c.identity.CurrentDisplayName(ctx)
}
