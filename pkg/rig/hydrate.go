// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

// HydrateAll populates every node's object-reference lists from its id
// sets. It is the inverse of propagate: a store loader (pkg/store)
// reconstructs nodes and their *IDs sets directly from join-table rows,
// leaving the object-reference lists empty, then calls HydrateAll once
// the whole graph is loaded to wire pointers back in. Safe to call
// repeatedly; it fully recomputes each list from its id set every time.
func (g *RIG) HydrateAll() error {
	for _, c := range g.components {
		if err := g.hydrateBase(&c.baseNode); err != nil {
			return err
		}
		c.ExternalPackages = c.ExternalPackages[:0]
		for id := range c.ExternalPackagesIDs {
			if ep, ok := g.externalPackages[id]; ok {
				c.ExternalPackages = append(c.ExternalPackages, ep)
			}
		}
	}
	for _, a := range g.aggregators {
		if err := g.hydrateBase(&a.baseNode); err != nil {
			return err
		}
	}
	for _, r := range g.runners {
		if err := g.hydrateBase(&r.baseNode); err != nil {
			return err
		}
		r.ArgsNodes = r.ArgsNodes[:0]
		for id := range r.ArgsNodesIDs {
			n, err := g.GetNodeByID(id)
			if err != nil {
				return err
			}
			r.ArgsNodes = append(r.ArgsNodes, n)
		}
	}
	for _, t := range g.tests {
		if err := g.hydrateBase(&t.baseNode); err != nil {
			return err
		}
		if t.TestExecutableID != "" {
			switch t.TestExecutableKind {
			case NodeComponent:
				t.TestExecutable = g.components[t.TestExecutableID]
			case NodeRunner:
				t.TestExecutable = g.runners[t.TestExecutableID]
			default:
				return newModelError(UnknownDependencyKind,
					"test %q: executable kind %q is not Component or Runner", t.Name, t.TestExecutableKind)
			}
		}
		t.TestComponents = t.TestComponents[:0]
		for id := range t.TestComponentsIDs {
			if c, ok := g.components[id]; ok {
				t.TestComponents = append(t.TestComponents, c)
			}
		}
		t.ComponentsBeingTested = t.ComponentsBeingTested[:0]
		for id := range t.ComponentsBeingTestedIDs {
			if c, ok := g.components[id]; ok {
				t.ComponentsBeingTested = append(t.ComponentsBeingTested, c)
			}
		}
	}
	return nil
}

// hydrateBase rebuilds a baseNode's DependsOn and Evidence lists from
// its id sets.
func (g *RIG) hydrateBase(b *baseNode) error {
	b.DependsOn = b.DependsOn[:0]
	for id := range b.DependsOnIDs {
		n, err := g.GetNodeByID(id)
		if err != nil {
			return err
		}
		b.DependsOn = append(b.DependsOn, n)
	}
	b.Evidence = b.Evidence[:0]
	for id := range b.EvidenceIDs {
		if e, ok := g.evidence[id]; ok {
			b.Evidence = append(b.Evidence, e)
		}
	}
	return nil
}
