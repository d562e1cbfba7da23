// Package decomposition maps repository paths to the components of
// configured logical decompositions.
package decomposition

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/churnscope/pkg/analyzer/risk"
	"github.com/panbanda/churnscope/pkg/threshold"
)

// Component is a named slice of the codebase selected by gitignore-style patterns.
type Component struct {
	Name     string   `koanf:"name" toml:"name" yaml:"name" json:"name"`
	Patterns []string `koanf:"patterns" toml:"patterns" yaml:"patterns" json:"patterns"`
}

// Decomposition is a named way of splitting the codebase into components.
type Decomposition struct {
	Name       string      `koanf:"name" toml:"name" yaml:"name" json:"name"`
	Components []Component `koanf:"components" toml:"components" yaml:"components" json:"components"`
}

// Compiled is a decomposition with its component matchers built.
type Compiled struct {
	name       string
	components []compiledComponent
}

type compiledComponent struct {
	name    string
	matcher gitignore.Matcher
}

// Name returns the declared decomposition name.
func (c *Compiled) Name() string { return c.name }

// ComponentNames returns component names in declaration order.
func (c *Compiled) ComponentNames() []string {
	names := make([]string, len(c.components))
	for i, comp := range c.components {
		names[i] = comp.name
	}
	return names
}

// ComponentOf returns the first declared component matching path.
func (c *Compiled) ComponentOf(path string) (string, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return "", false
	}
	for _, comp := range c.components {
		if comp.matcher.Match(parts, false) {
			return comp.name, true
		}
	}
	return "", false
}

// KeyFunc adapts ComponentOf for risk.Builder, treating item keys as paths.
func (c *Compiled) KeyFunc() risk.KeyFunc {
	return func(it risk.Item) (string, bool) {
		return c.ComponentOf(it.Key)
	}
}

// Index holds compiled decompositions in declaration order with a
// case-insensitive name lookup built once.
type Index struct {
	ordered []*Compiled
	byName  map[string]*Compiled
}

// Compile validates and compiles decompositions.
func Compile(decomps []Decomposition) (*Index, error) {
	idx := &Index{
		ordered: make([]*Compiled, 0, len(decomps)),
		byName:  make(map[string]*Compiled, len(decomps)),
	}

	for i, d := range decomps {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: logical decomposition #%d has no name", threshold.ErrConfiguration, i+1)
		}
		folded := strings.ToLower(name)
		if _, dup := idx.byName[folded]; dup {
			return nil, fmt.Errorf("%w: duplicate logical decomposition %q", threshold.ErrConfiguration, name)
		}
		if len(d.Components) == 0 {
			return nil, fmt.Errorf("%w: logical decomposition %q has no components", threshold.ErrConfiguration, name)
		}

		compiled := &Compiled{name: name}
		for j, comp := range d.Components {
			cname := strings.TrimSpace(comp.Name)
			if cname == "" {
				return nil, fmt.Errorf("%w: component #%d of %q has no name", threshold.ErrConfiguration, j+1, name)
			}
			patterns := comp.Patterns
			if len(patterns) == 0 {
				// A component without patterns selects its own directory.
				patterns = []string{cname + "/"}
			}
			ps := make([]gitignore.Pattern, 0, len(patterns))
			for _, p := range patterns {
				ps = append(ps, gitignore.ParsePattern(p, nil))
			}
			compiled.components = append(compiled.components, compiledComponent{
				name:    cname,
				matcher: gitignore.NewMatcher(ps),
			})
		}

		idx.ordered = append(idx.ordered, compiled)
		idx.byName[folded] = compiled
	}

	return idx, nil
}

// All returns the compiled decompositions in declaration order.
func (idx *Index) All() []*Compiled {
	out := make([]*Compiled, len(idx.ordered))
	copy(out, idx.ordered)
	return out
}

// Lookup finds a decomposition by name, ignoring case.
func (idx *Index) Lookup(name string) (*Compiled, bool) {
	c, ok := idx.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Len returns the number of decompositions.
func (idx *Index) Len() int { return len(idx.ordered) }

func splitPath(path string) []string {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
