// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"fmt"
	"sort"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Normalize returns a semantically equivalent copy of g whose ids are
// content-derived stable keys instead of process-scoped counters
// (comp-1, agg-2, ...). Two independent extraction runs over the same
// repository normalize to graphs with identical ids, which is what
// makes Compare meaningful across runs.
//
// Normalize deep-copies every entity; g itself is left unmodified.
func Normalize(g *rig.RIG) *rig.RIG {
	evidenceMap := make(map[string]string)
	for _, e := range allEvidence(g) {
		evidenceMap[e.ID] = evidenceStableKey(e)
	}
	pmMap := make(map[string]string)
	for _, pm := range g.PackageManagers() {
		pmMap[pm.ID] = pmStableKey(pm)
	}
	epMap := make(map[string]string)
	for _, ep := range g.ExternalPackages() {
		epMap[ep.ID] = epStableKey(ep)
	}
	componentMap := make(map[string]string)
	for _, c := range g.Components() {
		componentMap[c.ID] = componentStableKey(c)
	}
	aggregatorMap := make(map[string]string)
	for _, a := range g.Aggregators() {
		aggregatorMap[a.ID] = aggregatorStableKey(a)
	}
	runnerMap := make(map[string]string)
	for _, r := range g.Runners() {
		runnerMap[r.ID] = runnerStableKey(r)
	}
	testMap := make(map[string]string)
	for _, t := range g.Tests() {
		testMap[t.ID] = testStableKey(t)
	}

	nodeMap := unionMaps(componentMap, aggregatorMap, runnerMap)
	nodeAndTestMap := unionMaps(componentMap, aggregatorMap, runnerMap, testMap)

	out := rig.New()

	if g.RepositoryInfo != nil {
		repoCopy := *g.RepositoryInfo
		out.SetRepositoryInfo(&repoCopy)
	}
	if g.BuildSystemInfo != nil {
		bsCopy := *g.BuildSystemInfo
		out.SetBuildSystemInfo(&bsCopy)
	}

	for _, e := range allEvidence(g) {
		out.AddEvidence(rig.Evidence{
			ID:        evidenceMap[e.ID],
			Line:      append([]string(nil), e.Line...),
			CallStack: append([]string(nil), e.CallStack...),
		})
	}

	newPMByOldID := make(map[string]*rig.PackageManager)
	for _, pm := range g.PackageManagers() {
		newPM := &rig.PackageManager{
			ID:          pmMap[pm.ID],
			Name:        pm.Name,
			PackageName: pm.PackageName,
		}
		out.AddPackageManager(newPM)
		newPMByOldID[pm.ID] = newPM
	}

	for _, ep := range g.ExternalPackages() {
		var manager *rig.PackageManager
		if ep.Manager != nil {
			manager = newPMByOldID[ep.Manager.ID]
		}
		out.AddExternalPackage(&rig.ExternalPackage{
			ID:      epMap[ep.ID],
			Name:    ep.Name,
			Manager: manager,
		})
	}

	for _, c := range g.Components() {
		newComp := &rig.Component{
			Artifact: rig.Artifact{
				RelativePath: c.RelativePath,
				Locations:    append([]string(nil), c.Locations...),
			},
			Type:                c.Type,
			ProgrammingLanguage: c.ProgrammingLanguage,
			SourceFiles:         append([]string(nil), c.SourceFiles...),
			ExternalPackagesIDs: remapIDSet(c.ExternalPackagesIDs, epMap),
		}
		newComp.ID = componentMap[c.ID]
		newComp.Name = c.Name
		newComp.DependsOnIDs = remapIDSet(c.DependsOnIDs, nodeMap)
		newComp.EvidenceIDs = remapIDSet(c.EvidenceIDs, evidenceMap)
		if err := out.AddComponent(newComp); err != nil {
			panic(fmt.Sprintf("store: normalize: %v", err))
		}
	}

	for _, a := range g.Aggregators() {
		newAgg := &rig.Aggregator{}
		newAgg.ID = aggregatorMap[a.ID]
		newAgg.Name = a.Name
		newAgg.DependsOnIDs = remapIDSet(a.DependsOnIDs, nodeMap)
		newAgg.EvidenceIDs = remapIDSet(a.EvidenceIDs, evidenceMap)
		if err := out.AddAggregator(newAgg); err != nil {
			panic(fmt.Sprintf("store: normalize: %v", err))
		}
	}

	for _, r := range g.Runners() {
		newRunner := &rig.Runner{
			Arguments:    append([]string(nil), r.Arguments...),
			ArgsNodesIDs: remapIDSet(r.ArgsNodesIDs, nodeAndTestMap),
		}
		newRunner.ID = runnerMap[r.ID]
		newRunner.Name = r.Name
		newRunner.DependsOnIDs = remapIDSet(r.DependsOnIDs, nodeMap)
		newRunner.EvidenceIDs = remapIDSet(r.EvidenceIDs, evidenceMap)
		if err := out.AddRunner(newRunner); err != nil {
			panic(fmt.Sprintf("store: normalize: %v", err))
		}
	}

	for _, t := range g.Tests() {
		newTest := &rig.TestDefinition{
			TestFramework:            t.TestFramework,
			SourceFiles:              append([]string(nil), t.SourceFiles...),
			TestComponentsIDs:        remapIDSet(t.TestComponentsIDs, componentMap),
			ComponentsBeingTestedIDs: remapIDSet(t.ComponentsBeingTestedIDs, componentMap),
		}
		newTest.ID = testMap[t.ID]
		newTest.Name = t.Name
		newTest.DependsOnIDs = remapIDSet(t.DependsOnIDs, nodeMap)
		newTest.EvidenceIDs = remapIDSet(t.EvidenceIDs, evidenceMap)
		if t.TestExecutableID != "" {
			newTest.TestExecutableKind = t.TestExecutableKind
			switch t.TestExecutableKind {
			case rig.NodeComponent:
				newTest.TestExecutableID = componentMap[t.TestExecutableID]
			case rig.NodeRunner:
				newTest.TestExecutableID = runnerMap[t.TestExecutableID]
			}
		}
		if err := out.AddTest(newTest); err != nil {
			panic(fmt.Sprintf("store: normalize: %v", err))
		}
	}

	if err := out.HydrateAll(); err != nil {
		panic(fmt.Sprintf("store: normalize: hydrate: %v", err))
	}
	return out
}

// allEvidence collects every evidence entry reachable from any node,
// mirroring allEvidenceIDs in sqlite.go but returning the values rather
// than ids.
func allEvidence(g *rig.RIG) []rig.Evidence {
	seen := make(map[string]struct{})
	var out []rig.Evidence
	for _, n := range g.AllNodes() {
		for _, e := range n.EvidenceList() {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func componentStableKey(c *rig.Component) string {
	return fmt.Sprintf("%s:%s:%s", c.Name, c.Type, c.ProgrammingLanguage)
}

func aggregatorStableKey(a *rig.Aggregator) string {
	return fmt.Sprintf("%s:aggregator", a.Name)
}

func runnerStableKey(r *rig.Runner) string {
	return fmt.Sprintf("%s:runner", r.Name)
}

func testStableKey(t *rig.TestDefinition) string {
	return fmt.Sprintf("%s:test:%s", t.Name, t.TestFramework)
}

// evidenceStableKey uses the first line reference, falling back to the
// first call-stack entry, falling back to "unknown" — the exact
// priority order of rig.py's _compute_stable_key for Evidence.
func evidenceStableKey(e rig.Evidence) string {
	ref := "unknown"
	if len(e.Line) > 0 {
		ref = e.Line[0]
	} else if len(e.CallStack) > 0 {
		ref = e.CallStack[0]
	}
	return fmt.Sprintf("evidence:%s", ref)
}

func pmStableKey(pm *rig.PackageManager) string {
	return fmt.Sprintf("pm:%s:%s", pm.Name, pm.PackageName)
}

func epStableKey(ep *rig.ExternalPackage) string {
	pmName := ""
	if ep.Manager != nil {
		pmName = ep.Manager.Name
	}
	return fmt.Sprintf("pkg:%s:%s", ep.Name, pmName)
}

// unionMaps merges several old-id -> stable-key tables into one. Ids in
// a dependency or args-node set can reference any of several node
// kinds, so remapping must search the union rather than a single table
// (rig.py's _normalize_for_comparison builds the same union via dict
// unpacking at each call site).
func unionMaps(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// remapIDSet rewrites every id in the set through mapping, leaving an
// id unchanged if it has no entry (mirrors rig.py's remap_ids, which
// falls back to the original id via dict.get(old_id, old_id)).
func remapIDSet(ids map[string]struct{}, mapping map[string]string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for id := range ids {
		if mapped, ok := mapping[id]; ok {
			out[mapped] = struct{}{}
		} else {
			out[id] = struct{}{}
		}
	}
	return out
}

// sortedIDs returns the members of an id set in ascending order, for
// deterministic canonical-JSON and SQL iteration order.
func sortedIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
