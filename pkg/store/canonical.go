// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// ToCanonicalJSON marshals g's canonical export to JSON. It is the
// uncompressed baseline Compress measures its own output against.
func ToCanonicalJSON(g *rig.RIG) ([]byte, error) {
	b, err := json.Marshal(ToCanonical(g))
	if err != nil {
		return nil, fmt.Errorf("store: marshal canonical export: %w", err)
	}
	return b, nil
}

// CanonicalExport is a flat, JSON-friendly projection of a RIG: every
// cross-reference is kept as a sorted id list rather than a nested
// object, so the same entity never appears twice in the document. It
// is the shape fed to an LLM prompt and the shape Compare normalizes
// both sides to before diffing.
type CanonicalExport struct {
	Repo             RepoExport               `json:"repo"`
	Build            BuildExport              `json:"build"`
	Components       []ComponentExport        `json:"components"`
	Aggregators      []AggregatorExport       `json:"aggregators"`
	Runners          []RunnerExport           `json:"runners"`
	Tests            []TestExport             `json:"tests"`
	ExternalPackages []ExternalPackageExport  `json:"external_packages"`
	PackageManagers  []PackageManagerExport   `json:"package_managers"`
	Evidence         []EvidenceExport         `json:"evidence"`
}

type RepoExport struct {
	Name string `json:"name"`
	Root string `json:"root"`
}

type BuildExport struct {
	System       string `json:"system"`
	Type         string `json:"type,omitempty"`
	ConfigureCmd string `json:"configure_cmd,omitempty"`
	TestCmd      string `json:"test_cmd,omitempty"`
}

type ComponentExport struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	ProgrammingLanguage string   `json:"programming_language"`
	SourceFiles         []string `json:"source_files,omitempty"`
	RelativePath        string   `json:"relative_path"`
	Locations           []string `json:"locations,omitempty"`
	DependsOnIDs        []string `json:"depends_on_ids,omitempty"`
	EvidenceIDs         []string `json:"evidence_ids,omitempty"`
	ExternalPackagesIDs []string `json:"external_packages_ids,omitempty"`
}

type AggregatorExport struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	DependsOnIDs []string `json:"depends_on_ids,omitempty"`
	EvidenceIDs  []string `json:"evidence_ids,omitempty"`
}

type RunnerExport struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Arguments    []string `json:"arguments,omitempty"`
	ArgsNodesIDs []string `json:"args_nodes_ids,omitempty"`
	DependsOnIDs []string `json:"depends_on_ids,omitempty"`
	EvidenceIDs  []string `json:"evidence_ids,omitempty"`
}

type TestExport struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	TestFramework            string   `json:"test_framework"`
	TestExecutableComponentID string  `json:"test_executable_component_id,omitempty"`
	TestComponentsIDs        []string `json:"test_components_ids,omitempty"`
	ComponentsBeingTestedIDs []string `json:"components_being_tested_ids,omitempty"`
	SourceFiles              []string `json:"source_files,omitempty"`
	DependsOnIDs             []string `json:"depends_on_ids,omitempty"`
	EvidenceIDs              []string `json:"evidence_ids,omitempty"`
}

type ExternalPackageExport struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	PackageManagerID string `json:"package_manager_id"`
}

type PackageManagerExport struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PackageName string `json:"package_name"`
}

type EvidenceExport struct {
	ID        string   `json:"id"`
	Line      []string `json:"line,omitempty"`
	CallStack []string `json:"call_stack,omitempty"`
}

// ToCanonical flattens g into its canonical export shape. Id ordering
// within every list is by sorted id, so two exports of the same
// content always serialize byte-for-byte identically regardless of
// map iteration order.
func ToCanonical(g *rig.RIG) *CanonicalExport {
	out := &CanonicalExport{}

	if g.RepositoryInfo != nil {
		out.Repo = RepoExport{Name: g.RepositoryInfo.Name, Root: g.RepositoryInfo.RootPath}
		out.Build.ConfigureCmd = g.RepositoryInfo.ConfigureCommand
		out.Build.TestCmd = g.RepositoryInfo.TestCommand
	} else {
		out.Repo = RepoExport{Name: "Unknown", Root: "Unknown"}
	}
	if g.BuildSystemInfo != nil {
		out.Build.System = g.BuildSystemInfo.Name
		out.Build.Type = g.BuildSystemInfo.BuildType
	} else {
		out.Build.System = "Unknown"
	}

	for _, c := range sortedComponents(g.Components()) {
		out.Components = append(out.Components, ComponentExport{
			ID:                  c.ID,
			Name:                c.Name,
			Type:                string(c.Type),
			ProgrammingLanguage: c.ProgrammingLanguage,
			SourceFiles:         c.SourceFiles,
			RelativePath:        c.RelativePath,
			Locations:           c.Locations,
			DependsOnIDs:        sortedIDs(c.DependsOnIDs),
			EvidenceIDs:         sortedIDs(c.EvidenceIDs),
			ExternalPackagesIDs: sortedIDs(c.ExternalPackagesIDs),
		})
	}

	for _, a := range sortedAggregators(g.Aggregators()) {
		out.Aggregators = append(out.Aggregators, AggregatorExport{
			ID:           a.ID,
			Name:         a.Name,
			DependsOnIDs: sortedIDs(a.DependsOnIDs),
			EvidenceIDs:  sortedIDs(a.EvidenceIDs),
		})
	}

	for _, r := range sortedRunners(g.Runners()) {
		out.Runners = append(out.Runners, RunnerExport{
			ID:           r.ID,
			Name:         r.Name,
			Arguments:    r.Arguments,
			ArgsNodesIDs: sortedIDs(r.ArgsNodesIDs),
			DependsOnIDs: sortedIDs(r.DependsOnIDs),
			EvidenceIDs:  sortedIDs(r.EvidenceIDs),
		})
	}

	for _, t := range sortedTests(g.Tests()) {
		out.Tests = append(out.Tests, TestExport{
			ID:                        t.ID,
			Name:                      t.Name,
			TestFramework:             t.TestFramework,
			TestExecutableComponentID: t.TestExecutableID,
			TestComponentsIDs:         sortedIDs(t.TestComponentsIDs),
			ComponentsBeingTestedIDs:  sortedIDs(t.ComponentsBeingTestedIDs),
			SourceFiles:               t.SourceFiles,
			DependsOnIDs:              sortedIDs(t.DependsOnIDs),
			EvidenceIDs:               sortedIDs(t.EvidenceIDs),
		})
	}

	for _, ep := range sortedExternalPackages(g.ExternalPackages()) {
		pmID := ""
		if ep.Manager != nil {
			pmID = ep.Manager.ID
		}
		out.ExternalPackages = append(out.ExternalPackages, ExternalPackageExport{
			ID: ep.ID, Name: ep.Name, PackageManagerID: pmID,
		})
	}

	for _, pm := range sortedPackageManagers(g.PackageManagers()) {
		out.PackageManagers = append(out.PackageManagers, PackageManagerExport{
			ID: pm.ID, Name: pm.Name, PackageName: pm.PackageName,
		})
	}

	for _, e := range sortedEvidence(allEvidence(g)) {
		out.Evidence = append(out.Evidence, EvidenceExport{ID: e.ID, Line: e.Line, CallStack: e.CallStack})
	}

	return out
}

func sortedComponents(in []*rig.Component) []*rig.Component {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

func sortedAggregators(in []*rig.Aggregator) []*rig.Aggregator {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

func sortedRunners(in []*rig.Runner) []*rig.Runner {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

func sortedTests(in []*rig.TestDefinition) []*rig.TestDefinition {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

func sortedExternalPackages(in []*rig.ExternalPackage) []*rig.ExternalPackage {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

func sortedPackageManagers(in []*rig.PackageManager) []*rig.PackageManager {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}

func sortedEvidence(in []rig.Evidence) []rig.Evidence {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
	return in
}
