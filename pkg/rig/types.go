// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package rig

// NodeKind is the closed set of RIG node variants. Cross-entity edges
// that mix variants (depends_on, args_nodes, test_executable_component)
// are tagged with a NodeKind so persistence and traversal can dispatch
// without a type switch at every call site.
type NodeKind string

const (
	NodeComponent NodeKind = "component"
	NodeAggregator NodeKind = "aggregator"
	NodeRunner     NodeKind = "runner"
	NodeTest       NodeKind = "test"
)

// ComponentType is the set of buildable-unit kinds a Component may be.
type ComponentType string

const (
	ComponentExecutable     ComponentType = "executable"
	ComponentSharedLibrary  ComponentType = "shared_library"
	ComponentStaticLibrary  ComponentType = "static_library"
	ComponentPackageLibrary ComponentType = "package_library"
	ComponentVM             ComponentType = "vm"
	ComponentInterpreted    ComponentType = "interpreted"
)

// Node is the common interface satisfied by every RIG graph node
// (Component, Aggregator, Runner, TestDefinition). It exposes just enough
// to let the graph engine and validator operate generically across kinds.
type Node interface {
	NodeID() string
	NodeName() string
	NodeKind() NodeKind
	Dependencies() []Node
	EvidenceList() []Evidence
}

// Evidence points back to the source location that justified a recorded
// fact. At least one of Line or CallStack must be non-empty; Evidence
// values are constructed exclusively through NewEvidence, which enforces
// this invariant.
type Evidence struct {
	ID        string
	Line      []string
	CallStack []string
}

// NewEvidence constructs an Evidence, allocating a process-scoped id.
// Returns a *ModelError of kind InvalidEvidence if neither line nor
// call-stack references are supplied.
func NewEvidence(line, callStack []string) (Evidence, error) {
	if len(line) == 0 && len(callStack) == 0 {
		return Evidence{}, newModelError(InvalidEvidence,
			"evidence must include at least one of line or call_stack")
	}
	return Evidence{
		ID:        nextID(prefixEvidence),
		Line:      line,
		CallStack: callStack,
	}, nil
}

// PackageManager names a package manager (e.g. vcpkg, conan, cargo) and
// is shared by reference across every ExternalPackage it manages.
type PackageManager struct {
	ID          string
	Name        string
	PackageName string
}

// NewPackageManager constructs a PackageManager, allocating a process-
// scoped id.
func NewPackageManager(name, packageName string) *PackageManager {
	return &PackageManager{
		ID:          nextID(prefixPackage),
		Name:        name,
		PackageName: packageName,
	}
}

// ExternalPackage is a dependency sourced from an external package
// manager rather than built by the repository itself.
type ExternalPackage struct {
	ID      string
	Name    string
	Manager *PackageManager
}

// NewExternalPackage constructs an ExternalPackage, allocating a
// process-scoped id.
func NewExternalPackage(name string, manager *PackageManager) *ExternalPackage {
	return &ExternalPackage{
		ID:      nextID(prefixPackage),
		Name:    name,
		Manager: manager,
	}
}

// baseNode holds the fields common to every RIG node: identity,
// dependency edges, and evidence. Component, Aggregator, Runner, and
// TestDefinition all embed it.
//
// DependsOn and DependsOnIDs (similarly Evidence/EvidenceIDs) are a
// parallel object-list/id-set pair: every mutation must keep them in
// lockstep. Inside this package, mutation goes through the constructors,
// the Add* operations, and propagate. The fields are exported: the
// store's loader and Normalize assign ids and id sets directly and then
// rebuild the object lists with HydrateAll.
type baseNode struct {
	ID           string
	Name         string
	DependsOn    []Node
	DependsOnIDs map[string]struct{}
	Evidence     []Evidence
	EvidenceIDs  map[string]struct{}
}

func newBaseNode(id, name string, dependsOn []Node, evidence []Evidence) baseNode {
	b := baseNode{
		ID:           id,
		Name:         name,
		DependsOn:    dependsOn,
		DependsOnIDs: make(map[string]struct{}, len(dependsOn)),
		Evidence:     evidence,
		EvidenceIDs:  make(map[string]struct{}, len(evidence)),
	}
	for _, d := range dependsOn {
		b.DependsOnIDs[d.NodeID()] = struct{}{}
	}
	for _, e := range evidence {
		b.EvidenceIDs[e.ID] = struct{}{}
	}
	return b
}

func (b *baseNode) NodeID() string            { return b.ID }
func (b *baseNode) NodeName() string          { return b.Name }
func (b *baseNode) Dependencies() []Node      { return b.DependsOn }
func (b *baseNode) EvidenceList() []Evidence  { return b.Evidence }

func (b *baseNode) addDependency(dep Node) {
	if _, ok := b.DependsOnIDs[dep.NodeID()]; ok {
		return
	}
	b.DependsOn = append(b.DependsOn, dep)
	b.DependsOnIDs[dep.NodeID()] = struct{}{}
}

// AddDependency attaches dep to n's dependency list, keeping the object
// list and id set in lockstep. It is a no-op if dep is already present.
// Extractors use this to wire dependency edges discovered after a node
// has already been constructed (e.g. a two-pass build where targets may
// reference siblings not yet created).
func AddDependency(n Node, dep Node) {
	switch v := n.(type) {
	case *Component:
		v.addDependency(dep)
	case *Aggregator:
		v.addDependency(dep)
	case *Runner:
		v.addDependency(dep)
	case *TestDefinition:
		v.addDependency(dep)
	}
}

func (b *baseNode) addEvidence(ev Evidence) {
	if _, ok := b.EvidenceIDs[ev.ID]; ok {
		return
	}
	b.Evidence = append(b.Evidence, ev)
	b.EvidenceIDs[ev.ID] = struct{}{}
}

// AddEvidence attaches ev to n's evidence list, keeping the object list
// and id set in lockstep. It is a no-op if ev is already present. A
// store loading a persisted RIG uses this to reattach evidence rows to
// the node that already exists in memory with its original id.
func AddEvidence(n Node, ev Evidence) {
	switch v := n.(type) {
	case *Component:
		v.addEvidence(ev)
	case *Aggregator:
		v.addEvidence(ev)
	case *Runner:
		v.addEvidence(ev)
	case *TestDefinition:
		v.addEvidence(ev)
	}
}

// Artifact is a node that names a produced file: its canonical path
// relative to the repository root, plus any additional locations it was
// copied or installed to.
type Artifact struct {
	baseNode
	RelativePath string
	Locations    []string
}

// Component is a buildable unit: an executable, a static or shared
// library, a package, a VM image, or an interpreted entry point.
type Component struct {
	Artifact
	Type                 ComponentType
	ProgrammingLanguage  string
	SourceFiles          []string
	ExternalPackages     []*ExternalPackage
	ExternalPackagesIDs  map[string]struct{}
}

func (c *Component) NodeKind() NodeKind { return NodeComponent }

// NewComponent constructs a Component, allocating a process-scoped id.
// Returns a *ModelError of kind InvalidComponent if type or
// programmingLanguage is empty.
func NewComponent(name string, ctype ComponentType, language string, sourceFiles []string,
	relativePath string, dependsOn []Node, evidence []Evidence) (*Component, error) {
	if ctype == "" {
		return nil, newModelError(InvalidComponent, "component %q: type is required", name)
	}
	if language == "" {
		return nil, newModelError(InvalidComponent, "component %q: programming_language is required", name)
	}
	return &Component{
		Artifact: Artifact{
			baseNode:     newBaseNode(nextID(prefixComponent), name, dependsOn, evidence),
			RelativePath: relativePath,
		},
		Type:                ctype,
		ProgrammingLanguage: language,
		SourceFiles:         sourceFiles,
		ExternalPackagesIDs: make(map[string]struct{}),
	}, nil
}

// AddExternalPackage attaches an external package dependency to a
// component, keeping the object list and id set in lockstep.
func (c *Component) AddExternalPackage(ep *ExternalPackage) {
	if _, ok := c.ExternalPackagesIDs[ep.ID]; ok {
		return
	}
	c.ExternalPackages = append(c.ExternalPackages, ep)
	c.ExternalPackagesIDs[ep.ID] = struct{}{}
}

// Aggregator is a virtual target that groups other nodes without
// producing an artifact of its own (e.g. a CMake add_custom_target with
// only DEPENDS).
type Aggregator struct {
	baseNode
}

func (a *Aggregator) NodeKind() NodeKind { return NodeAggregator }

// NewAggregator constructs an Aggregator, allocating a process-scoped id.
func NewAggregator(name string, dependsOn []Node, evidence []Evidence) *Aggregator {
	return &Aggregator{baseNode: newBaseNode(nextID(prefixAggregator), name, dependsOn, evidence)}
}

// Runner is a target whose value is "executing a command": an ordered
// argument list plus the RIG nodes referenced symbolically by those
// arguments.
type Runner struct {
	baseNode
	Arguments    []string
	ArgsNodes    []Node
	ArgsNodesIDs map[string]struct{}
}

func (r *Runner) NodeKind() NodeKind { return NodeRunner }

// NewRunner constructs a Runner, allocating a process-scoped id.
func NewRunner(name string, arguments []string, dependsOn []Node, evidence []Evidence) *Runner {
	return &Runner{
		baseNode:     newBaseNode(nextID(prefixRunner), name, dependsOn, evidence),
		Arguments:    arguments,
		ArgsNodesIDs: make(map[string]struct{}),
	}
}

// AddArgsNode attaches a RIG node referenced by the runner's arguments,
// keeping the object list and id set in lockstep.
func (r *Runner) AddArgsNode(n Node) {
	if _, ok := r.ArgsNodesIDs[n.NodeID()]; ok {
		return
	}
	r.ArgsNodes = append(r.ArgsNodes, n)
	r.ArgsNodesIDs[n.NodeID()] = struct{}{}
}

// TestDefinition is a registered test: a name and framework bound to an
// executable (Component or Runner), the transitive build closure needed
// to run it, the components under test, and the test's own source
// files.
type TestDefinition struct {
	baseNode
	TestFramework              string
	TestExecutable             Node // *Component or *Runner, or nil
	TestExecutableID           string
	TestExecutableKind         NodeKind
	TestComponents             []*Component
	TestComponentsIDs          map[string]struct{}
	ComponentsBeingTested      []*Component
	ComponentsBeingTestedIDs   map[string]struct{}
	SourceFiles                []string
}

func (t *TestDefinition) NodeKind() NodeKind { return NodeTest }

// NewTestDefinition constructs a TestDefinition, allocating a
// process-scoped id. executable may be nil, a *Component, or a *Runner;
// any other concrete type is a programming error detected by the
// validator (spec §4.3 check 5), not here.
func NewTestDefinition(name, framework string, executable Node, sourceFiles []string,
	dependsOn []Node, evidence []Evidence) *TestDefinition {
	t := &TestDefinition{
		baseNode:                 newBaseNode(nextID(prefixTest), name, dependsOn, evidence),
		TestFramework:            framework,
		TestExecutable:           executable,
		SourceFiles:              sourceFiles,
		TestComponentsIDs:        make(map[string]struct{}),
		ComponentsBeingTestedIDs: make(map[string]struct{}),
	}
	if executable != nil {
		t.TestExecutableKind = executable.NodeKind()
		t.TestExecutableID = executable.NodeID()
	}
	return t
}

// AddTestComponent registers a member of the transitive build closure
// needed to run the test, keeping the object list and id set in
// lockstep.
func (t *TestDefinition) AddTestComponent(c *Component) {
	if _, ok := t.TestComponentsIDs[c.ID]; ok {
		return
	}
	t.TestComponents = append(t.TestComponents, c)
	t.TestComponentsIDs[c.ID] = struct{}{}
}

// AddComponentBeingTested registers a subject-under-test component,
// keeping the object list and id set in lockstep.
func (t *TestDefinition) AddComponentBeingTested(c *Component) {
	if _, ok := t.ComponentsBeingTestedIDs[c.ID]; ok {
		return
	}
	t.ComponentsBeingTested = append(t.ComponentsBeingTested, c)
	t.ComponentsBeingTestedIDs[c.ID] = struct{}{}
}

// RepositoryInfo carries repository-level facts: name, root path, and
// optional build/output/install directories and command strings.
type RepositoryInfo struct {
	Name             string
	RootPath         string
	BuildDirectory   string
	OutputDirectory  string
	InstallDirectory string
	ConfigureCommand string
	BuildCommand     string
	InstallCommand   string
	TestCommand      string
}

// BuildSystemInfo carries build-system identification: name, version,
// and build type (e.g. Debug, Release).
type BuildSystemInfo struct {
	Name      string
	Version   string
	BuildType string
}
