// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

// RIG is the Repository Intelligence Graph: the set of components,
// aggregators, runners, and tests extracted from a single repository,
// plus the evidence and package bookkeeping that back them.
//
// A zero RIG is not usable; construct one with New. All mutation goes
// through the Add* methods, which are idempotent by id: registering the
// same id twice is a no-op on the second call.
type RIG struct {
	RepositoryInfo  *RepositoryInfo
	BuildSystemInfo *BuildSystemInfo

	components  map[string]*Component
	aggregators map[string]*Aggregator
	runners     map[string]*Runner
	tests       map[string]*TestDefinition

	packageManagers  map[string]*PackageManager
	externalPackages map[string]*ExternalPackage
	evidence         map[string]Evidence
}

// New returns an empty RIG ready for population.
func New() *RIG {
	return &RIG{
		components:       make(map[string]*Component),
		aggregators:      make(map[string]*Aggregator),
		runners:          make(map[string]*Runner),
		tests:            make(map[string]*TestDefinition),
		packageManagers:  make(map[string]*PackageManager),
		externalPackages: make(map[string]*ExternalPackage),
		evidence:         make(map[string]Evidence),
	}
}

// SetRepositoryInfo records repository-level facts on the graph.
func (g *RIG) SetRepositoryInfo(info *RepositoryInfo) { g.RepositoryInfo = info }

// SetBuildSystemInfo records build-system identification on the graph.
func (g *RIG) SetBuildSystemInfo(info *BuildSystemInfo) { g.BuildSystemInfo = info }

// AddEvidence registers an evidence entry directly, idempotent by id. A
// store loader (pkg/store) reconstructs Evidence rows ahead of the
// nodes that reference them and registers each here so that a
// subsequent HydrateAll can resolve EvidenceIDs back into objects.
func (g *RIG) AddEvidence(e Evidence) { g.evidence[e.ID] = e }

// AddPackageManager registers a package manager directly, idempotent by
// id. Used by a store loader when package managers are reconstructed
// ahead of the external packages and components that reference them.
func (g *RIG) AddPackageManager(pm *PackageManager) { g.packageManagers[pm.ID] = pm }

// AddExternalPackage registers an external package (and its manager, if
// set) directly, idempotent by id. Used by a store loader when external
// packages are reconstructed ahead of the components that reference
// them via ExternalPackagesIDs.
func (g *RIG) AddExternalPackage(ep *ExternalPackage) { g.registerExternalPackage(ep) }

// AddComponent registers a component, idempotent by id, and propagates
// ids across its dependency and evidence closure.
func (g *RIG) AddComponent(c *Component) error {
	if _, exists := g.components[c.ID]; exists {
		return nil
	}
	g.components[c.ID] = c
	for _, ep := range c.ExternalPackages {
		g.registerExternalPackage(ep)
	}
	return g.propagate(c)
}

// AddAggregator registers an aggregator, idempotent by id, and
// propagates ids across its dependency and evidence closure.
func (g *RIG) AddAggregator(a *Aggregator) error {
	if _, exists := g.aggregators[a.ID]; exists {
		return nil
	}
	g.aggregators[a.ID] = a
	return g.propagate(a)
}

// AddRunner registers a runner, idempotent by id, and propagates ids
// across its dependency, args-nodes, and evidence closure.
func (g *RIG) AddRunner(r *Runner) error {
	if _, exists := g.runners[r.ID]; exists {
		return nil
	}
	g.runners[r.ID] = r
	for _, n := range r.ArgsNodes {
		if err := g.registerNode(n); err != nil {
			return err
		}
	}
	return g.propagate(r)
}

// AddTest registers a test definition, idempotent by id. Its executable
// is registered through the matching Add* operation, and ids are
// propagated across the test's own dependency and evidence closure.
// Test components and components being tested are placed in the
// component map as given, without propagation.
func (g *RIG) AddTest(t *TestDefinition) error {
	if _, exists := g.tests[t.ID]; exists {
		return nil
	}
	g.tests[t.ID] = t
	if t.TestExecutable != nil {
		if err := g.registerNode(t.TestExecutable); err != nil {
			return err
		}
	}
	for _, c := range t.TestComponents {
		g.components[c.ID] = c
	}
	for _, c := range t.ComponentsBeingTested {
		g.components[c.ID] = c
	}
	return g.propagate(t)
}

// registerNode registers a node into the RIG's map appropriate to its
// concrete kind. Used when a node is reached indirectly (e.g. a
// Runner's args-nodes, or a TestDefinition's executable) rather than
// through its own Add* call.
func (g *RIG) registerNode(n Node) error {
	switch v := n.(type) {
	case *Component:
		return g.AddComponent(v)
	case *Aggregator:
		return g.AddAggregator(v)
	case *Runner:
		return g.AddRunner(v)
	case *TestDefinition:
		return g.AddTest(v)
	default:
		return newModelError(UnknownDependencyKind, "unregisterable node kind %T", n)
	}
}

func (g *RIG) registerExternalPackage(ep *ExternalPackage) {
	g.externalPackages[ep.ID] = ep
	if ep.Manager != nil {
		g.packageManagers[ep.Manager.ID] = ep.Manager
	}
}

// propagate walks the dependency and evidence closure of n, recording
// every evidence id and recursively registering every dependency into
// the graph's maps. It is cycle-safe: a visited-id set prevents
// re-walking a node already seen in this call tree, so dependency
// cycles (which the validator reports, but the graph engine must never
// loop on) terminate registration cleanly.
func (g *RIG) propagate(n Node) error {
	return g.propagateVisited(n, make(map[string]struct{}))
}

func (g *RIG) propagateVisited(n Node, visited map[string]struct{}) error {
	if _, seen := visited[n.NodeID()]; seen {
		return nil
	}
	visited[n.NodeID()] = struct{}{}

	for _, e := range n.EvidenceList() {
		g.evidence[e.ID] = e
	}

	for _, dep := range n.Dependencies() {
		switch v := dep.(type) {
		case *Component:
			g.components[v.ID] = v
			for _, ep := range v.ExternalPackages {
				g.registerExternalPackage(ep)
			}
		case *Aggregator:
			g.aggregators[v.ID] = v
		case *Runner:
			g.runners[v.ID] = v
			for _, an := range v.ArgsNodes {
				if err := g.propagateVisited(an, visited); err != nil {
					return err
				}
			}
		case *TestDefinition:
			g.tests[v.ID] = v
		default:
			return newModelError(UnknownDependencyKind, "dependency of unknown kind %T on node %q", dep, n.NodeName())
		}
		if err := g.propagateVisited(dep, visited); err != nil {
			return err
		}
	}
	return nil
}
