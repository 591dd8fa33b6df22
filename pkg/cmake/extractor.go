// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Options configures a single Extract call.
type Options struct {
	// RepoRoot is the repository checkout to extract from.
	RepoRoot string
	// BuildDir is the CMake build directory to configure into. Configure
	// runs on every call unless SkipConfigure is set, in which case the
	// existing File API replies are read as-is.
	BuildDir string
	// Config is the multi-config generator configuration to introspect
	// (e.g. "Debug"). Empty is fine for single-config generators.
	Config string
	// SkipConfigure reuses an already-configured BuildDir instead of
	// invoking cmake again.
	SkipConfigure bool
	// ExcludeDirs adds extra directory names (or "dir/**" repo-relative
	// directories) DiscoverListsFiles should not descend into, beyond the
	// built-in defaults.
	ExcludeDirs []string
	Logger      *slog.Logger
}

// Extract runs the full CMake extraction pipeline (spec §4.4) against a
// repository: configure, read the File API reply, tokenize every
// CMakeLists.txt, classify each target, introspect CTest, and assemble
// a fully hydrated RIG. Any failure returns a typed *ExtractionError and
// discards the partial graph, per the Extractor contract (spec §6).
func Extract(ctx context.Context, opts Options) (*rig.RIG, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if !opts.SkipConfigure {
		logger.Info("configuring cmake build", "repo_root", opts.RepoRoot, "build_dir", opts.BuildDir)
		if err := Configure(ctx, opts.RepoRoot, opts.BuildDir); err != nil {
			return nil, err
		}
	}

	version, err := Version(ctx)
	if err != nil {
		return nil, err
	}

	reader := NewReader(opts.BuildDir)
	codemodel, err := reader.Codemodel()
	if err != nil {
		return nil, err
	}
	if len(codemodel.Configurations) == 0 {
		return nil, newExtractionError(CMakeFileAPIMalformed, opts.BuildDir, 0, nil, "codemodel reply has no configurations")
	}
	config := codemodel.Configurations[0]

	listsFiles, err := DiscoverListsFiles(opts.RepoRoot, opts.BuildDir, opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	idx := NewListsIndex()
	for _, relPath := range listsFiles {
		abs := filepath.Join(opts.RepoRoot, relPath)
		if err := ParseListsFile(abs, relPath, idx); err != nil {
			return nil, err
		}
	}

	cache, err := reader.Cache()
	if err != nil {
		return nil, err
	}
	repoInfo := repositoryInfo(opts.RepoRoot, codemodel, config, cache)

	g := rig.New()
	g.SetRepositoryInfo(repoInfo)
	g.SetBuildSystemInfo(&rig.BuildSystemInfo{Name: "cmake", Version: version, BuildType: opts.Config})

	nodesByName := make(map[string]rig.Node)
	artifactsByBasename := make(map[string]string)
	targetsByName := make(map[string]*Target)

	for _, ref := range config.Targets {
		target, err := reader.Target(ref)
		if err != nil {
			return nil, err
		}
		targetsByName[target.Name] = target
		for _, a := range target.Artifacts {
			artifactsByBasename[filepath.Base(a.Path)] = target.Name
		}
	}

	// Pass 1: create every Component (dependencies wired in pass 2, since
	// a target may depend on a sibling not yet constructed).
	for _, target := range targetsByName {
		class := ClassifyTarget(target, idx.CustomTargets)
		if class != ClassComponent {
			continue
		}
		comp, err := buildComponent(target, idx)
		if err != nil {
			return nil, err
		}
		nodesByName[target.Name] = comp
	}

	// Pass 2: Aggregators and Runners, which may depend on Components
	// built in pass 1 or on each other.
	for _, target := range targetsByName {
		class := ClassifyTarget(target, idx.CustomTargets)
		switch class {
		case ClassAggregator:
			agg, err := buildAggregator(target)
			if err != nil {
				return nil, err
			}
			nodesByName[target.Name] = agg
		case ClassRunner:
			runner, err := buildRunner(target, idx, nodesByName, artifactsByBasename)
			if err != nil {
				return nil, err
			}
			nodesByName[target.Name] = runner
		}
	}

	// Pass 3: wire target_link_libraries/dependencies edges, plus
	// VS_DEBUGGER_ENVIRONMENT-derived runtime dependencies (spec §4.4
	// step 4), now that every node exists.
	wireDependencies(nodesByName, targetsByName, idx, artifactsByBasename)

	for _, node := range nodesByName {
		if err := registerTyped(g, node); err != nil {
			return nil, err
		}
	}

	tests, err := extractTests(ctx, opts, idx, nodesByName, artifactsByBasename)
	if err != nil {
		return nil, err
	}
	for _, t := range tests {
		if err := g.AddTest(t); err != nil {
			return nil, err
		}
	}

	if err := g.HydrateAll(); err != nil {
		return nil, err
	}
	return g, nil
}

// wireDependencies links every node to its resolved File API/link-library
// dependencies plus any VS_DEBUGGER_ENVIRONMENT-derived runtime
// dependencies (spec §4.4 step 4), now that every node in nodesByName
// has been constructed.
func wireDependencies(nodesByName map[string]rig.Node, targetsByName map[string]*Target, idx *ListsIndex, artifactsByBasename map[string]string) {
	for name, node := range nodesByName {
		deps := dependencyNames(targetsByName[name], idx, targetsByName)
		runtimeBasenames := RuntimeDependencies(name, idx.TargetProperties)
		deps = append(deps, MatchRuntimeDependencies(runtimeBasenames, artifactsByBasename)...)
		for _, depName := range deps {
			depNode, ok := nodesByName[depName]
			if !ok {
				continue
			}
			rig.AddDependency(node, depNode)
		}
	}
}

// repositoryInfo derives RepositoryInfo per spec §4.4 step 2: the
// project name from the codemodel's first project, the build directory
// relative to the repo root when possible, and install/output
// directories from the cache-v2 reply.
func repositoryInfo(repoRoot string, codemodel *CodemodelReply, config CodemodelConfiguration, cache *CacheReply) *rig.RepositoryInfo {
	name := filepath.Base(repoRoot)
	if len(config.Projects) > 0 && config.Projects[0].Name != "" {
		name = config.Projects[0].Name
	}

	buildDir := codemodel.Paths.Build
	if rel, err := filepath.Rel(repoRoot, codemodel.Paths.Build); err == nil && !strings.HasPrefix(rel, "..") {
		buildDir = rel
	}

	installDir, _ := cache.Get("CMAKE_INSTALL_PREFIX")
	outputDir, _ := cache.Get(name + "_BINARY_DIR")

	return &rig.RepositoryInfo{
		Name:             name,
		RootPath:         repoRoot,
		BuildDirectory:   buildDir,
		OutputDirectory:  outputDir,
		InstallDirectory: installDir,
	}
}

func buildComponent(target *Target, idx *ListsIndex) (*rig.Component, error) {
	sourceFiles := make([]string, 0, len(target.Sources))
	for _, s := range target.Sources {
		sourceFiles = append(sourceFiles, s.Path)
	}

	var relPath string
	if len(target.Artifacts) > 0 {
		relPath = target.Artifacts[0].Path
	}

	ev, err := evidenceForTarget(target)
	if err != nil {
		return nil, err
	}

	comp, err := rig.NewComponent(
		target.Name,
		ComponentTypeFor(target.Type),
		TargetLanguage(target),
		sourceFiles,
		relPath,
		nil,
		[]rig.Evidence{ev},
	)
	if err != nil {
		return nil, err
	}

	for _, fp := range idx.FindPackages {
		if !targetReferencesPackage(target, idx, fp.Name) {
			continue
		}
		manager := rig.NewPackageManager("cmake", fp.Name)
		comp.AddExternalPackage(rig.NewExternalPackage(fp.Name, manager))
	}

	return comp, nil
}

// targetReferencesPackage approximates whether a find_package(...) call
// feeds this target, by checking whether its link-libraries list
// mentions the package name (CMake's common ``Pkg::component`` import
// target convention).
func targetReferencesPackage(target *Target, idx *ListsIndex, pkgName string) bool {
	for _, lib := range idx.LinkLibraries[target.Name] {
		if strings.HasPrefix(lib, pkgName+"::") || lib == pkgName {
			return true
		}
	}
	return false
}

func buildAggregator(target *Target) (*rig.Aggregator, error) {
	ev, err := evidenceForTarget(target)
	if err != nil {
		return nil, err
	}
	return rig.NewAggregator(target.Name, nil, []rig.Evidence{ev}), nil
}

func buildRunner(target *Target, idx *ListsIndex, nodesByName map[string]rig.Node, artifactsByBasename map[string]string) (*rig.Runner, error) {
	rec := idx.CustomTargets[target.Name]
	args := append([]string{}, rec.Params["COMMAND"]...)

	ev, err := evidenceForTarget(target)
	if err != nil {
		return nil, err
	}

	runner := rig.NewRunner(target.Name, args, nil, []rig.Evidence{ev})
	for _, a := range args {
		base := filepath.Base(a)
		if compName, ok := artifactsByBasename[base]; ok {
			if node, ok := nodesByName[compName]; ok {
				runner.AddArgsNode(node)
			}
		}
	}
	return runner, nil
}

// dependencyNames resolves a target's File API dependencies plus its
// target_link_libraries entries (which the File API dependency list
// does not always fully mirror for INTERFACE usage requirements) into
// plain target names.
func dependencyNames(target *Target, idx *ListsIndex, targetsByName map[string]*Target) []string {
	if target == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	add := func(n string) {
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}

	idToName := make(map[string]string, len(targetsByName))
	for name, t := range targetsByName {
		idToName[t.ID] = name
	}
	for _, dep := range target.Dependencies {
		if name, ok := idToName[dep.ID]; ok {
			add(name)
		}
	}
	for _, lib := range idx.LinkLibraries[target.Name] {
		if _, ok := targetsByName[lib]; ok {
			add(lib)
		}
	}
	if rec, ok := idx.CustomTargets[target.Name]; ok {
		for _, dep := range rec.Params["DEPENDS"] {
			if _, ok := targetsByName[dep]; ok {
				add(dep)
			}
		}
	}
	return names
}

func evidenceForTarget(target *Target) (rig.Evidence, error) {
	file, line, ok := ResolveBacktraceEvidence(target.BacktraceGraph, target.Backtrace)
	if !ok {
		return rig.NewEvidence([]string{target.Name}, nil)
	}
	return rig.NewEvidence([]string{file + ":" + strconv.Itoa(line)}, nil)
}

// registerTyped dispatches a node to the RIG's appropriately-typed Add*
// method.
func registerTyped(g *rig.RIG, n rig.Node) error {
	switch v := n.(type) {
	case *rig.Component:
		return g.AddComponent(v)
	case *rig.Aggregator:
		return g.AddAggregator(v)
	case *rig.Runner:
		return g.AddRunner(v)
	}
	return nil
}

// extractTests runs CTest introspection and builds a TestDefinition per
// registered test, resolving each test's executable back to a known
// Component and attaching evidence from the CTest backtrace graph (spec
// §4.4 step 6).
func extractTests(ctx context.Context, opts Options, idx *ListsIndex, nodesByName map[string]rig.Node, artifactsByBasename map[string]string) ([]*rig.TestDefinition, error) {
	reply, err := RunCTest(ctx, opts.BuildDir, opts.Config)
	if err != nil {
		return nil, err
	}

	addTestByName := make(map[string]AddTestRecord, len(idx.AddTests))
	for _, rec := range idx.AddTests {
		addTestByName[rec.Name] = rec
	}

	tests := make([]*rig.TestDefinition, 0, len(reply.Tests))
	for _, entry := range reply.Tests {
		ev, err := testEvidence(reply.BacktraceGraph, entry)
		if err != nil {
			return nil, err
		}

		var executable rig.Node
		var sourceFiles []string
		if rec, ok := addTestByName[entry.Name]; ok {
			executable, sourceFiles = resolveTestExecutable(opts.RepoRoot, rec, nodesByName, artifactsByBasename, ev)
		}

		t := rig.NewTestDefinition(entry.Name, "ctest", executable, sourceFiles, nil, []rig.Evidence{ev})
		switch exe := executable.(type) {
		case *rig.Component:
			// test_components is the transitive closure of the
			// executable's own depends_on; the executable itself is
			// included only when a dependency cycle leads back to it
			// (spec §4.4 step 6, concrete §8 scenario 3).
			for _, dep := range transitiveComponentDependencies(exe) {
				t.AddTestComponent(dep)
			}
		case *rig.Runner:
			// For a Runner executable, test_components is the Runner's
			// args_nodes (concrete §8 scenario 4).
			for _, node := range exe.ArgsNodes {
				if comp, ok := node.(*rig.Component); ok {
					t.AddTestComponent(comp)
				}
			}
		}
		tests = append(tests, t)
	}
	return tests, nil
}

// transitiveComponentDependencies walks root's dependency edges and
// returns every reachable *Component, visiting each dependency id once
// (cycle-safe). root is not added for itself, but appears in the result
// when a dependency cycle leads back to it.
func transitiveComponentDependencies(root rig.Node) []*rig.Component {
	visited := make(map[string]struct{})
	var out []*rig.Component
	var walk func(rig.Node)
	walk = func(n rig.Node) {
		for _, dep := range n.Dependencies() {
			if _, seen := visited[dep.NodeID()]; seen {
				continue
			}
			visited[dep.NodeID()] = struct{}{}
			if comp, ok := dep.(*rig.Component); ok {
				out = append(out, comp)
			}
			walk(dep)
		}
	}
	walk(root)
	return out
}

func testEvidence(graph BacktraceGraph, entry CTestTestEntry) (rig.Evidence, error) {
	if file, line, ok := ResolveBacktraceEvidence(graph, entry.Backtrace); ok {
		return rig.NewEvidence([]string{file + ":" + strconv.Itoa(line)}, nil)
	}
	return rig.NewEvidence([]string{entry.Name}, nil)
}

// resolveTestExecutable matches an add_test COMMAND token back to a
// known node: first by exact target name (the common case, since
// generator expressions like $<TARGET_FILE:foo> are already cleaned
// down to the bare target name), then by produced-artifact basename. If
// the command does not resolve, it synthesizes a Runner named after the
// command, with the remaining arguments as Arguments and any argument
// that names a known node recorded as an ArgsNode (spec §4.4 step 6,
// concrete §8 scenario 4). source_files is the resolved executable's
// own source files for a Component, or every argument that names a
// readable file on disk for a synthesized Runner.
func resolveTestExecutable(repoRoot string, rec AddTestRecord, nodesByName map[string]rig.Node, artifactsByBasename map[string]string, ev rig.Evidence) (rig.Node, []string) {
	if rec.Command == "" {
		return nil, nil
	}
	if node, ok := lookupKnownNode(rec.Command, nodesByName, artifactsByBasename); ok {
		if comp, ok := node.(*rig.Component); ok {
			return comp, comp.SourceFiles
		}
		return node, nil
	}

	runner := rig.NewRunner(rec.Command, append([]string{}, rec.Arguments...), nil, []rig.Evidence{ev})
	var sourceFiles []string
	for _, arg := range rec.Arguments {
		if node, ok := lookupKnownNode(arg, nodesByName, artifactsByBasename); ok {
			runner.AddArgsNode(node)
			continue
		}
		if rel := resolveReadableSourceFile(repoRoot, arg); rel != "" {
			sourceFiles = append(sourceFiles, rel)
		}
	}
	return runner, sourceFiles
}

// lookupKnownNode resolves a bare token to a registered RIG node, first
// by exact target name then by produced-artifact basename.
func lookupKnownNode(token string, nodesByName map[string]rig.Node, artifactsByBasename map[string]string) (rig.Node, bool) {
	if node, ok := nodesByName[token]; ok {
		return node, true
	}
	base := filepath.Base(token)
	if name, ok := artifactsByBasename[base]; ok {
		if node, ok := nodesByName[name]; ok {
			return node, true
		}
	}
	return nil, false
}

// resolveReadableSourceFile returns arg, relative to repoRoot, if it
// names a file that exists on disk either as given (absolute) or
// relative to repoRoot; empty string otherwise (spec §4.4 step 6).
func resolveReadableSourceFile(repoRoot, arg string) string {
	if arg == "" {
		return ""
	}
	candidate := arg
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(repoRoot, arg)
	}
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	if filepath.IsAbs(arg) {
		if rel, err := filepath.Rel(repoRoot, arg); err == nil {
			return rel
		}
	}
	return arg
}
