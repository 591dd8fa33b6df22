// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Validate runs every check against g and returns the diagnostics found,
// in the fixed order: missing source files, broken dependencies,
// circular dependencies, duplicate node ids, test wiring, missing
// evidence. An empty slice means the graph is clean.
//
// Validate hydrates g before checking it, so a graph freshly loaded from
// storage (whose object-reference lists may still be empty) does not
// need a separate hydration call first.
func Validate(g *rig.RIG) ([]Diagnostic, error) {
	if err := g.HydrateAll(); err != nil {
		return nil, err
	}

	var diags []Diagnostic
	diags = append(diags, validateMissingSourceFiles(g)...)
	diags = append(diags, validateBrokenDependencies(g)...)
	diags = append(diags, validateCircularDependencies(g)...)
	diags = append(diags, validateDuplicateNodeIDs(g)...)
	diags = append(diags, validateTestWiring(g)...)
	diags = append(diags, validateEvidencePresence(g)...)
	return diags, nil
}

// validateMissingSourceFiles is check 1: every source path on every
// component must resolve under the repository root and exist on disk.
func validateMissingSourceFiles(g *rig.RIG) []Diagnostic {
	info := g.RepositoryInfo
	if info == nil {
		return nil
	}

	var diags []Diagnostic
	for _, c := range g.Components() {
		for _, src := range c.SourceFiles {
			full := src
			if !filepath.IsAbs(src) {
				full = filepath.Join(info.RootPath, src)
			}
			if _, err := os.Stat(full); err != nil {
				diags = append(diags, Diagnostic{
					Severity:   SeverityError,
					Category:   CategoryMissingSourceFile,
					Message:    fmt.Sprintf("source file does not exist: %s", src),
					NodeName:   c.Name,
					FilePath:   src,
					Suggestion: "check if the file path is correct or if the file was moved or deleted",
				})
			}
		}
	}
	return diags
}

// validateBrokenDependencies is check 2: every depends_on entry on
// every buildable node must name a known node.
func validateBrokenDependencies(g *rig.RIG) []Diagnostic {
	nodes := g.GetAllRIGNodes()

	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.NodeName()] = struct{}{}
	}

	var diags []Diagnostic
	for _, n := range nodes {
		for _, dep := range n.Dependencies() {
			if _, ok := known[dep.NodeName()]; !ok {
				diags = append(diags, Diagnostic{
					Severity:   SeverityError,
					Category:   CategoryBrokenDependency,
					Message:    fmt.Sprintf("dependency %q does not exist", dep.NodeName()),
					NodeName:   n.NodeName(),
					Suggestion: "check if the dependency name is correct or if the target was removed",
				})
			}
		}
	}
	return diags
}

// validateCircularDependencies is check 3: DFS with recursion-stack
// coloring over the name-level dependency graph. Reports one diagnostic
// per connected component that contains a cycle, then continues
// scanning the remaining unvisited components (rather than stopping at
// the first cycle found).
func validateCircularDependencies(g *rig.RIG) []Diagnostic {
	nodes := g.GetAllRIGNodes()

	depGraph := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		names := make([]string, 0, len(n.Dependencies()))
		for _, dep := range n.Dependencies() {
			names = append(names, dep.NodeName())
		}
		depGraph[n.NodeName()] = names
	}

	var diags []Diagnostic
	visited := make(map[string]struct{})

	var hasCycle func(name string, recStack map[string]struct{}) bool
	hasCycle = func(name string, recStack map[string]struct{}) bool {
		visited[name] = struct{}{}
		recStack[name] = struct{}{}

		for _, neighbor := range depGraph[name] {
			if _, seen := visited[neighbor]; !seen {
				if hasCycle(neighbor, recStack) {
					return true
				}
			} else if _, onStack := recStack[neighbor]; onStack {
				return true
			}
		}

		delete(recStack, name)
		return false
	}

	for _, n := range nodes {
		name := n.NodeName()
		if _, seen := visited[name]; seen {
			continue
		}
		if hasCycle(name, make(map[string]struct{})) {
			diags = append(diags, Diagnostic{
				Severity:   SeverityError,
				Category:   CategoryCircularDependency,
				Message:    fmt.Sprintf("circular dependency detected involving node %q", name),
				NodeName:   name,
				Suggestion: "review the dependency chain to break the circular reference",
			})
		}
	}
	return diags
}

// validateDuplicateNodeIDs is check 4: no two nodes across all four
// maps may share an id.
func validateDuplicateNodeIDs(g *rig.RIG) []Diagnostic {
	counts := make(map[string]int)
	for _, n := range g.AllNodes() {
		counts[n.NodeID()]++
	}

	var diags []Diagnostic
	for id, count := range counts {
		if count > 1 {
			diags = append(diags, Diagnostic{
				Severity:   SeverityError,
				Category:   CategoryDuplicateNodeID,
				Message:    fmt.Sprintf("node id %q is used by %d different nodes", id, count),
				NodeName:   id,
				Suggestion: "ensure all node ids are unique across the entire graph",
			})
		}
	}
	return diags
}

// validateTestWiring is check 5: every test must have a non-nil
// executable reference, and that reference must exist in the
// appropriate node map.
func validateTestWiring(g *rig.RIG) []Diagnostic {
	var diags []Diagnostic
	for _, t := range g.Tests() {
		if t.TestExecutable == nil {
			diags = append(diags, Diagnostic{
				Severity:   SeverityError,
				Category:   CategoryMissingTestExecutable,
				Message:    fmt.Sprintf("test %q has no test executable defined", t.Name),
				NodeName:   t.Name,
				Suggestion: "each test should have an associated test executable component or runner",
			})
			continue
		}

		switch t.TestExecutableKind {
		case rig.NodeComponent:
			if _, ok := g.GetComponentByID(t.TestExecutable.NodeID()); !ok {
				diags = append(diags, testExecutableNotFound(t.Name))
			}
		case rig.NodeRunner:
			if _, ok := g.GetRunnerByID(t.TestExecutable.NodeID()); !ok {
				diags = append(diags, testExecutableNotFound(t.Name))
			}
		}
	}
	return diags
}

func testExecutableNotFound(testName string) Diagnostic {
	return Diagnostic{
		Severity:   SeverityError,
		Category:   CategoryTestExecutableComponentNotFound,
		Message:    fmt.Sprintf("test %q references a test executable that does not exist in the graph", testName),
		NodeName:   testName,
		Suggestion: "ensure the test executable is correctly added to the graph",
	}
}

// validateEvidencePresence is check 6: every buildable node must carry
// at least one evidence entry.
func validateEvidencePresence(g *rig.RIG) []Diagnostic {
	var diags []Diagnostic
	for _, n := range g.GetAllRIGNodes() {
		if len(n.EvidenceList()) == 0 {
			diags = append(diags, Diagnostic{
				Severity:   SeverityError,
				Category:   CategoryMissingEvidence,
				Message:    fmt.Sprintf("node %q has no evidence information", n.NodeName()),
				NodeName:   n.NodeName(),
				Suggestion: "all nodes should have evidence indicating where they are defined",
			})
		}
	}
	return diags
}
