// Package grid is the reference Grid implementation: an in-memory sparse
// table of cell text satisfying formula.Grid, plus CSV and JSON
// persistence for it. It is the external collaborator the formula engine
// is specified against, not part of the engine itself (spec.md §1, §9
// "Grid coupling").
package grid

import (
	"sync"

	"github.com/TKDKid1000/tablecalc/formula"
)

// Grid is a sparse, in-memory spreadsheet grid: cell text keyed by
// address, with a shared recompute cache and function registry for
// resolving formula cells.
type Grid struct {
	mu       sync.RWMutex
	cells    map[formula.Reference]string
	cache    *formula.Cache
	registry *formula.Registry
}

// New builds an empty Grid bound to registry, with its own recompute cache.
func New(registry *formula.Registry) *Grid {
	return &Grid{
		cells:    make(map[formula.Reference]string),
		cache:    formula.NewCache(),
		registry: registry,
	}
}

// Set stores raw text at addr and invalidates the recompute cache, per
// §4.8: "any edit to any cell invalidates the whole cache."
func (g *Grid) Set(addr formula.Reference, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if text == "" {
		delete(g.cells, addr)
	} else {
		g.cells[addr] = text
	}
	g.cache.Invalidate()
}

// GetCellText implements formula.Grid.
func (g *Grid) GetCellText(addr formula.Reference) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[addr]
}

// AsToken implements formula.Grid: coerce the cell at addr to a Token,
// evaluating it if it's a formula, threading ctx through the recursive
// call so cycle detection spans the whole dereference chain.
func (g *Grid) AsToken(ctx *formula.EvalContext, addr formula.Reference) (formula.Token, error) {
	leave, err := ctx.Enter(addr)
	if err != nil {
		return formula.Token{}, err
	}
	defer leave()

	g.mu.RLock()
	text := g.cells[addr]
	g.mu.RUnlock()
	return formula.EvaluateCellTextWithContext(text, g, g.registry, ctx)
}

// Render returns addr's display text: the cached value if present,
// otherwise a freshly evaluated one (which it then caches), matching
// §4.8's "rendering collaborator populates [the cache] when it asks for a
// cell's display value."
func (g *Grid) Render(addr formula.Reference) (string, error) {
	if tok, ok := g.cache.Get(addr); ok {
		return displayText(tok), nil
	}
	tok, err := formula.EvaluateCellTextWithContext(g.GetCellText(addr), g, g.registry, formula.NewEvalContext())
	if err != nil {
		return "", err
	}
	g.cache.Put(addr, tok)
	return displayText(tok), nil
}

func displayText(tok formula.Token) string {
	if tok.Kind == formula.RefToken {
		if single, ok := tok.Refs.Single(); ok {
			return single.ToText()
		}
	}
	return tok.Content
}

// Registry returns the function registry this grid resolves formula cells
// against.
func (g *Grid) Registry() *formula.Registry {
	return g.registry
}

// Cache returns the grid's recompute cache, so a caller can inspect its
// generation id between frames without re-deriving a dependency graph.
func (g *Grid) Cache() *formula.Cache {
	return g.cache
}

// Occupied returns every address holding non-empty text, in no particular
// order; callers that need a stable order should sort the result.
func (g *Grid) Occupied() []formula.Reference {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]formula.Reference, 0, len(g.cells))
	for addr := range g.cells {
		out = append(out, addr)
	}
	return out
}
