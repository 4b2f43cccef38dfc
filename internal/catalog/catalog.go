// Package catalog implements component F: the lookup facade in front of
// the base-task resolver (component D) and the list-expression expander
// (component E). It is the only thing executor code ever talks to:
// GetRaw/Get materialize and expand entries lazily on first reference,
// and TemplatesRequired accumulates every templ_name an executor will
// need to have loaded before it can run a MatchTemplate task.
//
// Grounded on internal/registry/registry.go's Registry (a map-of-maps
// facade built once via New()) for overall shape, and on
// internal/dag/types.go's sync.RWMutex-guarded node map for the
// read-mostly concurrency model spec.md §5 requires. The lazy
// single-writer discipline around a miss uses
// golang.org/x/sync/singleflight, the same package the rest of the pack
// reaches for whenever one goroutine must do work on behalf of several
// concurrent callers without duplicating it.
package catalog

import (
	"strings"
	"sync"

	"github.com/vk/taskcatalog/internal/listexpr"
	"github.com/vk/taskcatalog/internal/taskdefaults"
	"github.com/vk/taskcatalog/internal/taskgraph"
	"github.com/vk/taskcatalog/internal/tasktype"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/singleflight"
)

// MaxTasks caps how many entries the resolved-table cache will hold.
// Past this, Get still computes and returns an answer, it just stops
// interning new ones — matching TaskData.cpp's MAX_TASKS_SIZE, which
// only ever gated the resolved table, never the raw one (see
// DESIGN.md's Open Question decision on this asymmetry).
const MaxTasks = 65535

// Catalog is the read-mostly lookup facade over a resolved Resolver. It
// is safe for concurrent use: GetRaw/Get take the read lock for the
// common already-interned case, and upgrade to the slow,
// singleflight-guarded path only on a miss.
type Catalog struct {
	resolver *taskgraph.Resolver
	defaults *taskdefaults.Registry
	doc      cty.Value

	mu       sync.RWMutex
	resolved map[string]*tasktype.Task

	group singleflight.Group
}

// New wraps an already-Parse'd resolver. doc is the same decoded
// document the resolver was parsed from, needed to materialize the body
// of a name that is only ever referenced implicitly (never declared).
// defaults is the same prototype registry the resolver was constructed
// with, needed as the `#`-projection fallback when an expression's
// left-hand side is empty (e.g. a bare "#next").
func New(resolver *taskgraph.Resolver, defaults *taskdefaults.Registry, doc cty.Value) *Catalog {
	return &Catalog{
		resolver: resolver,
		defaults: defaults,
		doc:      doc,
		resolved: make(map[string]*tasktype.Task),
	}
}

// GetRaw returns the raw (un-expanded) task named name, materializing an
// implicit `prefix@parent` derivation on first reference if necessary.
// It returns nil if name (and, for a `@`-qualified name, every ancestor
// up the chain) cannot be resolved.
func (c *Catalog) GetRaw(name string) *tasktype.Task {
	c.mu.RLock()
	t := c.resolver.Raw(name)
	c.mu.RUnlock()
	if t != nil {
		return t
	}

	at := strings.IndexByte(name, '@')
	if at < 0 {
		return nil
	}
	parentName := name[at+1:]
	prefix := name[:at]

	v, _, _ := c.group.Do("raw:"+name, func() (interface{}, error) {
		c.mu.RLock()
		t := c.resolver.Raw(name)
		c.mu.RUnlock()
		if t != nil {
			return t, nil
		}
		parent := c.GetRaw(parentName)
		if parent == nil {
			return (*tasktype.Task)(nil), nil
		}
		c.mu.Lock()
		t, err := c.resolver.MaterializeTemplate(name, prefix, parent, taskgraph.Body(c.doc, name))
		c.mu.Unlock()
		if err != nil {
			return (*tasktype.Task)(nil), nil
		}
		return t, nil
	})
	return v.(*tasktype.Task)
}

// Get returns the fully expanded task named name, running the
// list-expression expander over it (and interning the result, along
// with any synthetic `_DERIVED_` tasks) if it has not been expanded
// before.
func (c *Catalog) Get(name string) (*tasktype.Task, error) {
	c.mu.RLock()
	t, ok := c.resolved[name]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := c.group.Do("get:"+name, func() (interface{}, error) {
		c.mu.RLock()
		t, ok := c.resolved[name]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}

		raw := c.GetRaw(name)
		if raw == nil {
			return nil, &taskgraph.UnknownTaskError{Task: name}
		}

		expander := &listexpr.Expander{GetRaw: c.GetRaw, Default: c.defaults.Base()}
		resolved, derived, err := expander.Expand(name, raw)
		if err != nil {
			return nil, err
		}

		for _, d := range derived {
			c.intern(d.Name, d)
		}
		c.intern(name, resolved)
		return resolved, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tasktype.Task), nil
}

// intern stores t in the resolved table under name, unless the table has
// already reached MaxTasks — in which case the caller still gets to use
// t, it simply is not cached, and a later Get for the same name
// recomputes it.
func (c *Catalog) intern(name string, t *tasktype.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.resolved[name]; ok {
		return
	}
	if len(c.resolved) >= MaxTasks {
		return
	}
	c.resolved[name] = t
}

// TemplatesRequired returns every templ_name referenced by a
// MatchTemplate task materialized so far. Since a MatchTemplate task's
// Match payload is fixed entirely by component C and list-expression
// expansion never touches it, every such task the resolver has ever
// interned — whether from the initial Parse or a lazy `@`-template
// derivation triggered by GetRaw — already carries its final templ_name,
// so a scan of the resolver's raw table is exhaustive.
func (c *Catalog) TemplatesRequired() map[string]struct{} {
	out := make(map[string]struct{})
	c.mu.RLock()
	all := c.resolver.All()
	c.mu.RUnlock()
	for _, t := range all {
		if t.Algorithm == tasktype.AlgorithmMatchTemplate && t.Match != nil {
			out[t.Match.TemplName] = struct{}{}
		}
	}
	return out
}
