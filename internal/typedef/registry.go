// Package typedef implements the typedef registry of spec.md §3.5, §4.4:
// a mapping from scoped name to (AST, language-id set), seeded from a
// predefined list, extended by user declarations, immutable per entry
// after insertion. Grounded directly on the teacher's
// internal/registry/registry.go (providers/aliases/extensions triple-map,
// guarded by a single sync.RWMutex, with Iterate-style introspection).
package typedef

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/cdecl/internal/ast"
	"github.com/oxhq/cdecl/internal/dialect"
	"github.com/oxhq/cdecl/internal/diag"
)

// Entry is one registered typedef/using name.
type Entry struct {
	Name       ast.ScopedName
	Root       ast.NodeRef // node in the owning Registry's shared graph
	Dialects   dialect.Mask
	Predefined bool
}

// Registry is a session-scoped (spec.md §5's "explicit context", not a
// package global) typedef table. All entries share one *ast.Graph, so a
// Typedef-reference node's Of field can point directly at an entry's Root —
// spec.md §3.3's "payload = pointer to a registered typedef's AST", taken
// literally.
type Registry struct {
	mu      sync.RWMutex
	graph   *ast.Graph
	entries map[string]*Entry
	order   []string // insertion order, for deterministic `show all`
}

// New creates an empty registry bound to g.
func New(g *ast.Graph) *Registry {
	return &Registry{graph: g, entries: make(map[string]*Entry)}
}

// Render renders a node to a displayable string — supplied by the caller
// (internal/command, backed by internal/printer/gibberish) so this package
// never depends on the printers. Used only to build a redefinition-conflict
// diff detail.
type Render func(root ast.NodeRef) string

// Define inserts name -> root, legal in the dialects langs. Redefinition
// with a structurally-equal AST is a no-op (spec.md §4.4); anything else is
// a conflict whose diag.Diagnostic carries a unified diff of the two
// typedefs' rendered forms when render is non-nil.
func (r *Registry) Define(name ast.ScopedName, root ast.NodeRef, langs dialect.Mask, predefined bool, render Render) error {
	key := name.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		if ast.Equal(r.graph, existing.Root, r.graph, root) {
			return nil
		}
		d := diag.New(diag.CodeTypedefConflict, diag.Location{}, "%q is already defined with an incompatible type", key)
		if render != nil {
			detail := unifiedDiff(key, render(existing.Root), render(root))
			d = d.WithDetail(detail)
		}
		return diag.ConflictError{Diagnostic: d}
	}

	r.entries[key] = &Entry{Name: name, Root: root, Dialects: langs, Predefined: predefined}
	r.order = append(r.order, key)
	return nil
}

// Lookup returns the entry for name, if any.
func (r *Registry) Lookup(name ast.ScopedName) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name.String()]
	return e, ok
}

// Remove deletes name from the registry. No command of the command surface
// calls it.
func (r *Registry) Remove(name ast.ScopedName) bool {
	key := name.String()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; !ok {
		return false
	}
	delete(r.entries, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the registry, matching spec.md §3.5's "cleared at exit".
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*Entry)
	r.order = nil
}

// Filter selects which subset Iterate walks.
type Filter uint8

const (
	FilterAll Filter = iota
	FilterUser
	FilterPredefined
)

// Iterate calls fn for every entry matching filter, in insertion order
// (spec.md §4.4, used by the `show` command).
func (r *Registry) Iterate(filter Filter, fn func(*Entry)) {
	r.mu.RLock()
	keys := append([]string(nil), r.order...)
	snapshot := make(map[string]*Entry, len(r.entries))
	for k, v := range r.entries {
		snapshot[k] = v
	}
	r.mu.RUnlock()

	for _, k := range keys {
		e := snapshot[k]
		switch filter {
		case FilterUser:
			if e.Predefined {
				continue
			}
		case FilterPredefined:
			if !e.Predefined {
				continue
			}
		}
		fn(e)
	}
}

// Names returns every defined name, sorted, for internal/lookup's "did you
// mean" suggestions over known typedef names (spec.md §4.8).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unifiedDiff(name, before, after string) string {
	diffText, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fmt.Sprintf("%s (existing)", name),
		ToFile:   fmt.Sprintf("%s (new)", name),
		Context:  1,
	})
	if err != nil {
		return fmt.Sprintf("existing: %s; new: %s", before, after)
	}
	return diffText
}
