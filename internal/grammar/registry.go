package grammar

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Registry is a read-only map of dslId -> grammar, populated once at
// process initialization and immutable thereafter.
type Registry struct {
	grammars map[string]*SxlGrammar
}

// NewRegistry builds an empty registry. Use Add/LoadDir to populate it
// before handing it to a validator.
func NewRegistry() *Registry {
	return &Registry{grammars: map[string]*SxlGrammar{}}
}

// Add registers a parsed grammar. Returns an error if its dsl id is
// already present.
func (r *Registry) Add(g *SxlGrammar) error {
	if _, exists := r.grammars[g.DSL.ID]; exists {
		return fmt.Errorf("grammar: duplicate dsl id %q", g.DSL.ID)
	}
	r.grammars[g.DSL.ID] = g
	return nil
}

// Lookup returns the grammar for dslId, or ok=false if none is registered.
func (r *Registry) Lookup(dslID string) (*SxlGrammar, bool) {
	g, ok := r.grammars[dslID]
	return g, ok
}

// IDs returns every registered dsl id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.grammars))
	for id := range r.grammars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadDir loads every *.yaml/*.yml file in dir into the registry. Each
// file must contain exactly one grammar document.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("grammar: read dir %s: %w", dir, err)
	}
	r := NewRegistry()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("grammar: read %s: %w", path, err)
		}
		g, err := Load(data)
		if err != nil {
			return nil, fmt.Errorf("grammar: %s: %w", path, err)
		}
		if err := r.Add(g); err != nil {
			return nil, err
		}
	}
	return r, nil
}
