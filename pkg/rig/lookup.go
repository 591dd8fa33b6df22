// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

import "fmt"

// GetComponentByID returns the component with the given id, or false if
// none is registered.
func (g *RIG) GetComponentByID(id string) (*Component, bool) {
	c, ok := g.components[id]
	return c, ok
}

// GetAggregatorByID returns the aggregator with the given id, or false
// if none is registered.
func (g *RIG) GetAggregatorByID(id string) (*Aggregator, bool) {
	a, ok := g.aggregators[id]
	return a, ok
}

// GetRunnerByID returns the runner with the given id, or false if none
// is registered.
func (g *RIG) GetRunnerByID(id string) (*Runner, bool) {
	r, ok := g.runners[id]
	return r, ok
}

// GetTestByID returns the test definition with the given id, or false
// if none is registered.
func (g *RIG) GetTestByID(id string) (*TestDefinition, bool) {
	t, ok := g.tests[id]
	return t, ok
}

// GetExternalPackageByID returns the external package with the given
// id, or false if none is registered.
func (g *RIG) GetExternalPackageByID(id string) (*ExternalPackage, bool) {
	ep, ok := g.externalPackages[id]
	return ep, ok
}

// GetPackageManagerByID returns the package manager with the given id,
// or false if none is registered.
func (g *RIG) GetPackageManagerByID(id string) (*PackageManager, bool) {
	pm, ok := g.packageManagers[id]
	return pm, ok
}

// GetEvidenceByID returns the evidence with the given id, or false if
// none is registered.
func (g *RIG) GetEvidenceByID(id string) (Evidence, bool) {
	e, ok := g.evidence[id]
	return e, ok
}

// GetNodeByID returns the node with the given id, searching components,
// aggregators, runners, and tests in that order. Returns a
// *ModelError of kind UnknownDependencyKind if no node with that id is
// registered in any of the four maps.
func (g *RIG) GetNodeByID(id string) (Node, error) {
	if c, ok := g.components[id]; ok {
		return c, nil
	}
	if a, ok := g.aggregators[id]; ok {
		return a, nil
	}
	if r, ok := g.runners[id]; ok {
		return r, nil
	}
	if t, ok := g.tests[id]; ok {
		return t, nil
	}
	return nil, newModelError(UnknownDependencyKind, "no node registered with id %q", id)
}

// AllNodes returns every registered node across all four kinds:
// components, aggregators, runners, and tests.
func (g *RIG) AllNodes() []Node {
	nodes := make([]Node, 0, len(g.components)+len(g.aggregators)+len(g.runners)+len(g.tests))
	for _, c := range g.components {
		nodes = append(nodes, c)
	}
	for _, a := range g.aggregators {
		nodes = append(nodes, a)
	}
	for _, r := range g.runners {
		nodes = append(nodes, r)
	}
	for _, t := range g.tests {
		nodes = append(nodes, t)
	}
	return nodes
}

// GetAllRIGNodes returns every buildable node that is not a test:
// components, aggregators, and runners. Tests are excluded because the
// dependency-cycle and dependency-resolution checks of the validator
// operate over exactly this set.
func (g *RIG) GetAllRIGNodes() []Node {
	nodes := make([]Node, 0, len(g.components)+len(g.aggregators)+len(g.runners))
	for _, c := range g.components {
		nodes = append(nodes, c)
	}
	for _, a := range g.aggregators {
		nodes = append(nodes, a)
	}
	for _, r := range g.runners {
		nodes = append(nodes, r)
	}
	return nodes
}

// GetRIGNodeByName returns the first non-test node matching name,
// searching components, then aggregators, then runners. Names are not
// guaranteed unique across kinds; callers needing kind-specific lookup
// should use GetComponentByID/GetAggregatorByID/GetRunnerByID directly
// once they have an id.
func (g *RIG) GetRIGNodeByName(name string) (Node, bool) {
	for _, c := range g.components {
		if c.Name == name {
			return c, true
		}
	}
	for _, a := range g.aggregators {
		if a.Name == name {
			return a, true
		}
	}
	for _, r := range g.runners {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Components returns every registered component.
func (g *RIG) Components() []*Component {
	out := make([]*Component, 0, len(g.components))
	for _, c := range g.components {
		out = append(out, c)
	}
	return out
}

// Aggregators returns every registered aggregator.
func (g *RIG) Aggregators() []*Aggregator {
	out := make([]*Aggregator, 0, len(g.aggregators))
	for _, a := range g.aggregators {
		out = append(out, a)
	}
	return out
}

// Runners returns every registered runner.
func (g *RIG) Runners() []*Runner {
	out := make([]*Runner, 0, len(g.runners))
	for _, r := range g.runners {
		out = append(out, r)
	}
	return out
}

// Tests returns every registered test definition.
func (g *RIG) Tests() []*TestDefinition {
	out := make([]*TestDefinition, 0, len(g.tests))
	for _, t := range g.tests {
		out = append(out, t)
	}
	return out
}

// ExternalPackages returns every registered external package.
func (g *RIG) ExternalPackages() []*ExternalPackage {
	out := make([]*ExternalPackage, 0, len(g.externalPackages))
	for _, ep := range g.externalPackages {
		out = append(out, ep)
	}
	return out
}

// PackageManagers returns every registered package manager.
func (g *RIG) PackageManagers() []*PackageManager {
	out := make([]*PackageManager, 0, len(g.packageManagers))
	for _, pm := range g.packageManagers {
		out = append(out, pm)
	}
	return out
}

// ComponentCountsByType returns the number of registered components for
// each ComponentType present in the graph.
func (g *RIG) ComponentCountsByType() map[ComponentType]int {
	counts := make(map[ComponentType]int)
	for _, c := range g.components {
		counts[c.Type]++
	}
	return counts
}

// ComponentCountsByLanguage returns the number of registered components
// for each programming language present in the graph.
func (g *RIG) ComponentCountsByLanguage() map[string]int {
	counts := make(map[string]int)
	for _, c := range g.components {
		counts[c.ProgrammingLanguage]++
	}
	return counts
}

// String implements fmt.Stringer with a short summary, useful in log
// lines and CLI --stats output.
func (g *RIG) String() string {
	return fmt.Sprintf("RIG{components=%d aggregators=%d runners=%d tests=%d external_packages=%d}",
		len(g.components), len(g.aggregators), len(g.runners), len(g.tests), len(g.externalPackages))
}
