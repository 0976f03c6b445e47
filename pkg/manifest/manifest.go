// Package manifest loads dependency manifests from TOML depfiles.
//
// A depfile declares a set of packages and, per package, the packages it
// depends on together with the dependency class. Loading a depfile produces
// the priority-weighted graph the rest of the system operates on.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/hferras/depsolve/pkg/depgraph"
	"github.com/hferras/depsolve/pkg/priority"
)

// Manifest is a parsed depfile.
type Manifest struct {
	Project  Project   `toml:"project"`
	Packages []Package `toml:"package"`
}

// Project carries depfile-level metadata.
type Project struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

// Package declares one unit and its outgoing dependencies.
type Package struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Depends []Depend `toml:"depends"`
}

// Depend is one dependency declaration. Class defaults to "runtime" when
// empty.
type Depend struct {
	On        string `toml:"on"`
	Class     string `toml:"class"`
	Satisfied bool   `toml:"satisfied"`
	Ignored   bool   `toml:"ignored"`
	Cross     bool   `toml:"cross"`
}

// Load reads and parses the depfile at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse parses depfile TOML and validates every declaration.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(m.Packages))
	for i, pkg := range m.Packages {
		if pkg.Name == "" {
			return nil, fmt.Errorf("package %d: missing name", i)
		}
		if seen[pkg.Name] {
			return nil, fmt.Errorf("package %q declared twice", pkg.Name)
		}
		seen[pkg.Name] = true
		for _, dep := range pkg.Depends {
			if dep.On == "" {
				return nil, fmt.Errorf("package %q: dependency with empty target", pkg.Name)
			}
			if dep.Class != "" {
				if _, err := priority.FromClass(dep.Class); err != nil {
					return nil, fmt.Errorf("package %q depends on %q: %w", pkg.Name, dep.On, err)
				}
			}
		}
	}
	return &m, nil
}

// Graph builds the dependency graph declared by the manifest. Every declared
// package becomes a node even when it has no edges; dependency targets not
// declared as packages become nodes too, the way a resolver records a
// dependency it has not yet expanded. Each declaration contributes one
// priority to its edge's multiset.
func (m *Manifest) Graph() *depgraph.Graph[string] {
	g := depgraph.New[string]()
	for _, pkg := range m.Packages {
		g.AddNode(pkg.Name)
		for _, dep := range pkg.Depends {
			g.Add(pkg.Name, dep.On, m.depPriority(dep))
		}
	}
	return g
}

func (m *Manifest) depPriority(dep Depend) *priority.Dep {
	class := dep.Class
	if class == "" {
		class = "runtime"
	}
	p, err := priority.FromClass(class)
	if err != nil {
		// Parse validated every class already.
		p = &priority.Dep{Runtime: true}
	}
	p.Satisfied = dep.Satisfied
	p.Ignored = dep.Ignored
	p.Cross = dep.Cross
	return p
}
