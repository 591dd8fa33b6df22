// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Load reconstructs a RIG from the database. It fails with a
// *StoreError of kind CorruptStore if the store does not hold exactly
// one rig_metadata row. The returned graph is fully hydrated: every
// object-reference list (DependsOn, Evidence, ExternalPackages,
// ArgsNodes, TestExecutable, TestComponents, ComponentsBeingTested) is
// populated from its id set.
func (s *Store) Load(ctx context.Context) (*rig.RIG, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rig_metadata`).Scan(&count); err != nil {
		return nil, newStoreError(StoreUnavailable, err, "count rig_metadata rows")
	}
	if count != 1 {
		return nil, newStoreError(CorruptStore, nil, "expected exactly one RIG, found %d", count)
	}

	g := rig.New()

	if err := loadRepositoryInfo(ctx, s.db, g); err != nil {
		return nil, err
	}
	if err := loadBuildSystemInfo(ctx, s.db, g); err != nil {
		return nil, err
	}

	evidenceByDBID, err := loadEvidence(ctx, s.db, g)
	if err != nil {
		return nil, err
	}
	pmByDBID, err := loadPackageManagers(ctx, s.db, g)
	if err != nil {
		return nil, err
	}
	epByDBID, err := loadExternalPackages(ctx, s.db, g, pmByDBID)
	if err != nil {
		return nil, err
	}
	componentByDBID, err := loadComponents(ctx, s.db, g)
	if err != nil {
		return nil, err
	}
	aggregatorByDBID, err := loadAggregators(ctx, s.db, g)
	if err != nil {
		return nil, err
	}
	runnerByDBID, err := loadRunners(ctx, s.db, g)
	if err != nil {
		return nil, err
	}
	testByDBID, err := loadTests(ctx, s.db, g, componentByDBID, runnerByDBID)
	if err != nil {
		return nil, err
	}

	nodeByTypeAndDBID := func(nodeType string, dbID int64) rig.Node {
		switch nodeType {
		case "component":
			if c, ok := componentByDBID[dbID]; ok {
				return c
			}
		case "aggregator":
			if a, ok := aggregatorByDBID[dbID]; ok {
				return a
			}
		case "runner":
			if r, ok := runnerByDBID[dbID]; ok {
				return r
			}
		case "test":
			if t, ok := testByDBID[dbID]; ok {
				return t
			}
		}
		return nil
	}

	if err := loadNodeEvidence(ctx, s.db, evidenceByDBID, componentByDBID, aggregatorByDBID, runnerByDBID, testByDBID); err != nil {
		return nil, err
	}
	if err := loadDependencies(ctx, s.db, nodeByTypeAndDBID, componentByDBID, aggregatorByDBID, runnerByDBID, testByDBID); err != nil {
		return nil, err
	}
	if err := loadRunnerArgsNodes(ctx, s.db, nodeByTypeAndDBID, runnerByDBID); err != nil {
		return nil, err
	}
	if err := loadTestRelationships(ctx, s.db, testByDBID, componentByDBID); err != nil {
		return nil, err
	}
	if err := loadSourceFiles(ctx, s.db, componentByDBID, testByDBID); err != nil {
		return nil, err
	}
	if err := loadExternalPackageRelationships(ctx, s.db, componentByDBID, epByDBID); err != nil {
		return nil, err
	}
	if err := loadComponentLocations(ctx, s.db, componentByDBID); err != nil {
		return nil, err
	}

	if err := g.HydrateAll(); err != nil {
		return nil, newStoreError(TransactionFailed, err, "hydrate loaded RIG")
	}
	return g, nil
}

func loadRepositoryInfo(ctx context.Context, db *sql.DB, g *rig.RIG) error {
	var info rig.RepositoryInfo
	var build, output, install, configure, buildCmd, install2, test sql.NullString
	row := db.QueryRowContext(ctx, `
		SELECT name, root_path, build_directory, output_directory, install_directory,
			configure_command, build_command, install_command, test_command
		FROM repository_info`)
	err := row.Scan(&info.Name, &info.RootPath, &build, &output, &install, &configure, &buildCmd, &install2, &test)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return newStoreError(StoreUnavailable, err, "load repository_info")
	}
	info.BuildDirectory = build.String
	info.OutputDirectory = output.String
	info.InstallDirectory = install.String
	info.ConfigureCommand = configure.String
	info.BuildCommand = buildCmd.String
	info.InstallCommand = install2.String
	info.TestCommand = test.String
	g.SetRepositoryInfo(&info)
	return nil
}

func loadBuildSystemInfo(ctx context.Context, db *sql.DB, g *rig.RIG) error {
	var info rig.BuildSystemInfo
	var version, buildType sql.NullString
	row := db.QueryRowContext(ctx, `SELECT name, version, build_type FROM build_system_info`)
	err := row.Scan(&info.Name, &version, &buildType)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return newStoreError(StoreUnavailable, err, "load build_system_info")
	}
	info.Version = version.String
	info.BuildType = buildType.String
	g.SetBuildSystemInfo(&info)
	return nil
}

func loadEvidence(ctx context.Context, db *sql.DB, g *rig.RIG) (map[int64]string, error) {
	out := make(map[int64]string)
	rows, err := db.QueryContext(ctx, `SELECT id, evidence_string_id, line_json, call_stack_json FROM evidence`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query evidence")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID int64
		var stringID string
		var lineJSON, callStackJSON sql.NullString
		if err := rows.Scan(&dbID, &stringID, &lineJSON, &callStackJSON); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan evidence row")
		}
		ev := rig.Evidence{ID: stringID}
		if lineJSON.Valid {
			if err := json.Unmarshal([]byte(lineJSON.String), &ev.Line); err != nil {
				return nil, newStoreError(StoreUnavailable, err, "unmarshal evidence %q line", stringID)
			}
		}
		if callStackJSON.Valid {
			if err := json.Unmarshal([]byte(callStackJSON.String), &ev.CallStack); err != nil {
				return nil, newStoreError(StoreUnavailable, err, "unmarshal evidence %q call stack", stringID)
			}
		}
		g.AddEvidence(ev)
		out[dbID] = stringID
	}
	return out, rows.Err()
}

func loadPackageManagers(ctx context.Context, db *sql.DB, g *rig.RIG) (map[int64]*rig.PackageManager, error) {
	out := make(map[int64]*rig.PackageManager)
	rows, err := db.QueryContext(ctx, `SELECT id, pm_string_id, name, package_name FROM package_managers`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query package_managers")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID int64
		pm := &rig.PackageManager{}
		if err := rows.Scan(&dbID, &pm.ID, &pm.Name, &pm.PackageName); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan package_managers row")
		}
		g.AddPackageManager(pm)
		out[dbID] = pm
	}
	return out, rows.Err()
}

func loadExternalPackages(ctx context.Context, db *sql.DB, g *rig.RIG, pmByDBID map[int64]*rig.PackageManager) (map[int64]*rig.ExternalPackage, error) {
	out := make(map[int64]*rig.ExternalPackage)
	rows, err := db.QueryContext(ctx, `SELECT id, ep_string_id, name, package_manager_id FROM external_packages`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query external_packages")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID, pmDBID int64
		ep := &rig.ExternalPackage{}
		if err := rows.Scan(&dbID, &ep.ID, &ep.Name, &pmDBID); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan external_packages row")
		}
		ep.Manager = pmByDBID[pmDBID]
		g.AddExternalPackage(ep)
		out[dbID] = ep
	}
	return out, rows.Err()
}

func loadComponents(ctx context.Context, db *sql.DB, g *rig.RIG) (map[int64]*rig.Component, error) {
	out := make(map[int64]*rig.Component)
	rows, err := db.QueryContext(ctx, `SELECT id, comp_string_id, name, type, relative_path, programming_language FROM components`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query components")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID int64
		var stringID, name, ctype, relPath, lang string
		if err := rows.Scan(&dbID, &stringID, &name, &ctype, &relPath, &lang); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan components row")
		}
		c := &rig.Component{
			Artifact: rig.Artifact{
				RelativePath: relPath,
			},
			Type:                rig.ComponentType(ctype),
			ProgrammingLanguage: lang,
			ExternalPackagesIDs: make(map[string]struct{}),
		}
		c.ID = stringID
		c.Name = name
		c.DependsOnIDs = make(map[string]struct{})
		c.EvidenceIDs = make(map[string]struct{})
		if err := g.AddComponent(c); err != nil {
			return nil, newStoreError(TransactionFailed, err, "register component %q", stringID)
		}
		out[dbID] = c
	}
	return out, rows.Err()
}

func loadAggregators(ctx context.Context, db *sql.DB, g *rig.RIG) (map[int64]*rig.Aggregator, error) {
	out := make(map[int64]*rig.Aggregator)
	rows, err := db.QueryContext(ctx, `SELECT id, agg_string_id, name FROM aggregators`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query aggregators")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID int64
		a := &rig.Aggregator{}
		var stringID, name string
		if err := rows.Scan(&dbID, &stringID, &name); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan aggregators row")
		}
		a.ID = stringID
		a.Name = name
		a.DependsOnIDs = make(map[string]struct{})
		a.EvidenceIDs = make(map[string]struct{})
		if err := g.AddAggregator(a); err != nil {
			return nil, newStoreError(TransactionFailed, err, "register aggregator %q", stringID)
		}
		out[dbID] = a
	}
	return out, rows.Err()
}

func loadRunners(ctx context.Context, db *sql.DB, g *rig.RIG) (map[int64]*rig.Runner, error) {
	out := make(map[int64]*rig.Runner)
	rows, err := db.QueryContext(ctx, `SELECT id, runner_string_id, name, arguments_json FROM runners`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query runners")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID int64
		var stringID, name string
		var argsJSON sql.NullString
		if err := rows.Scan(&dbID, &stringID, &name, &argsJSON); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan runners row")
		}
		r := &rig.Runner{ArgsNodesIDs: make(map[string]struct{})}
		r.ID = stringID
		r.Name = name
		r.DependsOnIDs = make(map[string]struct{})
		r.EvidenceIDs = make(map[string]struct{})
		if argsJSON.Valid {
			if err := json.Unmarshal([]byte(argsJSON.String), &r.Arguments); err != nil {
				return nil, newStoreError(StoreUnavailable, err, "unmarshal runner %q arguments", stringID)
			}
		}
		if err := g.AddRunner(r); err != nil {
			return nil, newStoreError(TransactionFailed, err, "register runner %q", stringID)
		}
		out[dbID] = r
	}
	return out, rows.Err()
}

func loadTests(ctx context.Context, db *sql.DB, g *rig.RIG, componentByDBID map[int64]*rig.Component, runnerByDBID map[int64]*rig.Runner) (map[int64]*rig.TestDefinition, error) {
	out := make(map[int64]*rig.TestDefinition)
	rows, err := db.QueryContext(ctx, `
		SELECT id, test_string_id, name, test_executable_component_id, test_executable_type, test_framework
		FROM tests`)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "query tests")
	}
	defer rows.Close()
	for rows.Next() {
		var dbID int64
		var stringID, name string
		var execDBID sql.NullInt64
		var execType sql.NullString
		var framework string
		if err := rows.Scan(&dbID, &stringID, &name, &execDBID, &execType, &framework); err != nil {
			return nil, newStoreError(StoreUnavailable, err, "scan tests row")
		}
		t := &rig.TestDefinition{
			TestFramework:            framework,
			TestComponentsIDs:        make(map[string]struct{}),
			ComponentsBeingTestedIDs: make(map[string]struct{}),
		}
		t.ID = stringID
		t.Name = name
		t.DependsOnIDs = make(map[string]struct{})
		t.EvidenceIDs = make(map[string]struct{})
		if execDBID.Valid && execType.Valid {
			switch execType.String {
			case "component":
				if c, ok := componentByDBID[execDBID.Int64]; ok {
					t.TestExecutableID = c.ID
					t.TestExecutableKind = rig.NodeComponent
				}
			case "runner":
				if r, ok := runnerByDBID[execDBID.Int64]; ok {
					t.TestExecutableID = r.ID
					t.TestExecutableKind = rig.NodeRunner
				}
			}
		}
		if err := g.AddTest(t); err != nil {
			return nil, newStoreError(TransactionFailed, err, "register test %q", stringID)
		}
		out[dbID] = t
	}
	return out, rows.Err()
}

func loadNodeEvidence(ctx context.Context, db *sql.DB, evidenceByDBID map[int64]string,
	componentByDBID map[int64]*rig.Component, aggregatorByDBID map[int64]*rig.Aggregator,
	runnerByDBID map[int64]*rig.Runner, testByDBID map[int64]*rig.TestDefinition) error {
	rows, err := db.QueryContext(ctx, `SELECT node_type, node_id, evidence_id FROM node_evidence`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query node_evidence")
	}
	defer rows.Close()
	for rows.Next() {
		var nodeType string
		var nodeDBID, evDBID int64
		if err := rows.Scan(&nodeType, &nodeDBID, &evDBID); err != nil {
			return newStoreError(StoreUnavailable, err, "scan node_evidence row")
		}
		evStringID, ok := evidenceByDBID[evDBID]
		if !ok {
			continue
		}
		switch nodeType {
		case "component":
			if c, ok := componentByDBID[nodeDBID]; ok {
				c.EvidenceIDs[evStringID] = struct{}{}
			}
		case "aggregator":
			if a, ok := aggregatorByDBID[nodeDBID]; ok {
				a.EvidenceIDs[evStringID] = struct{}{}
			}
		case "runner":
			if r, ok := runnerByDBID[nodeDBID]; ok {
				r.EvidenceIDs[evStringID] = struct{}{}
			}
		case "test":
			if t, ok := testByDBID[nodeDBID]; ok {
				t.EvidenceIDs[evStringID] = struct{}{}
			}
		}
	}
	return rows.Err()
}

func loadDependencies(ctx context.Context, db *sql.DB, nodeByTypeAndDBID func(string, int64) rig.Node,
	componentByDBID map[int64]*rig.Component, aggregatorByDBID map[int64]*rig.Aggregator,
	runnerByDBID map[int64]*rig.Runner, testByDBID map[int64]*rig.TestDefinition) error {
	tables := []struct {
		table  string
		column string
	}{
		{"component_dependencies", "component_id"},
		{"aggregator_dependencies", "aggregator_id"},
		{"runner_dependencies", "runner_id"},
		{"test_dependencies", "test_id"},
	}
	for _, spec := range tables {
		rows, err := db.QueryContext(ctx, "SELECT "+spec.column+", depends_on_type, depends_on_id FROM "+spec.table)
		if err != nil {
			return newStoreError(StoreUnavailable, err, "query %s", spec.table)
		}
		for rows.Next() {
			var nodeDBID, depDBID int64
			var depType string
			if err := rows.Scan(&nodeDBID, &depType, &depDBID); err != nil {
				rows.Close()
				return newStoreError(StoreUnavailable, err, "scan %s row", spec.table)
			}
			dep := nodeByTypeAndDBID(depType, depDBID)
			if dep == nil {
				continue
			}
			switch spec.table {
			case "component_dependencies":
				if c, ok := componentByDBID[nodeDBID]; ok {
					c.DependsOnIDs[dep.NodeID()] = struct{}{}
				}
			case "aggregator_dependencies":
				if a, ok := aggregatorByDBID[nodeDBID]; ok {
					a.DependsOnIDs[dep.NodeID()] = struct{}{}
				}
			case "runner_dependencies":
				if r, ok := runnerByDBID[nodeDBID]; ok {
					r.DependsOnIDs[dep.NodeID()] = struct{}{}
				}
			case "test_dependencies":
				if t, ok := testByDBID[nodeDBID]; ok {
					t.DependsOnIDs[dep.NodeID()] = struct{}{}
				}
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()
	}
	return nil
}

func loadRunnerArgsNodes(ctx context.Context, db *sql.DB, nodeByTypeAndDBID func(string, int64) rig.Node, runnerByDBID map[int64]*rig.Runner) error {
	rows, err := db.QueryContext(ctx, `SELECT runner_id, args_node_type, args_node_id FROM runner_args_nodes`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query runner_args_nodes")
	}
	defer rows.Close()
	for rows.Next() {
		var runnerDBID, argDBID int64
		var argType string
		if err := rows.Scan(&runnerDBID, &argType, &argDBID); err != nil {
			return newStoreError(StoreUnavailable, err, "scan runner_args_nodes row")
		}
		r, ok := runnerByDBID[runnerDBID]
		if !ok {
			continue
		}
		argNode := nodeByTypeAndDBID(argType, argDBID)
		if argNode == nil {
			continue
		}
		r.ArgsNodesIDs[argNode.NodeID()] = struct{}{}
	}
	return rows.Err()
}

func loadTestRelationships(ctx context.Context, db *sql.DB, testByDBID map[int64]*rig.TestDefinition, componentByDBID map[int64]*rig.Component) error {
	rows, err := db.QueryContext(ctx, `SELECT test_id, component_id FROM test_components`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query test_components")
	}
	for rows.Next() {
		var testDBID, compDBID int64
		if err := rows.Scan(&testDBID, &compDBID); err != nil {
			rows.Close()
			return newStoreError(StoreUnavailable, err, "scan test_components row")
		}
		if t, ok := testByDBID[testDBID]; ok {
			if c, ok := componentByDBID[compDBID]; ok {
				t.TestComponentsIDs[c.ID] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT test_id, component_id FROM test_components_being_tested`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query test_components_being_tested")
	}
	defer rows.Close()
	for rows.Next() {
		var testDBID, compDBID int64
		if err := rows.Scan(&testDBID, &compDBID); err != nil {
			return newStoreError(StoreUnavailable, err, "scan test_components_being_tested row")
		}
		if t, ok := testByDBID[testDBID]; ok {
			if c, ok := componentByDBID[compDBID]; ok {
				t.ComponentsBeingTestedIDs[c.ID] = struct{}{}
			}
		}
	}
	return rows.Err()
}

func loadSourceFiles(ctx context.Context, db *sql.DB, componentByDBID map[int64]*rig.Component, testByDBID map[int64]*rig.TestDefinition) error {
	rows, err := db.QueryContext(ctx, `SELECT component_id, source_file_path FROM component_source_files`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query component_source_files")
	}
	for rows.Next() {
		var compDBID int64
		var path string
		if err := rows.Scan(&compDBID, &path); err != nil {
			rows.Close()
			return newStoreError(StoreUnavailable, err, "scan component_source_files row")
		}
		if c, ok := componentByDBID[compDBID]; ok {
			c.SourceFiles = append(c.SourceFiles, path)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT test_id, source_file_path FROM test_source_files`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query test_source_files")
	}
	defer rows.Close()
	for rows.Next() {
		var testDBID int64
		var path string
		if err := rows.Scan(&testDBID, &path); err != nil {
			return newStoreError(StoreUnavailable, err, "scan test_source_files row")
		}
		if t, ok := testByDBID[testDBID]; ok {
			t.SourceFiles = append(t.SourceFiles, path)
		}
	}
	return rows.Err()
}

func loadExternalPackageRelationships(ctx context.Context, db *sql.DB, componentByDBID map[int64]*rig.Component, epByDBID map[int64]*rig.ExternalPackage) error {
	rows, err := db.QueryContext(ctx, `SELECT component_id, external_package_id FROM component_external_packages`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query component_external_packages")
	}
	defer rows.Close()
	for rows.Next() {
		var compDBID, epDBID int64
		if err := rows.Scan(&compDBID, &epDBID); err != nil {
			return newStoreError(StoreUnavailable, err, "scan component_external_packages row")
		}
		c, ok := componentByDBID[compDBID]
		if !ok {
			continue
		}
		ep, ok := epByDBID[epDBID]
		if !ok {
			continue
		}
		c.ExternalPackagesIDs[ep.ID] = struct{}{}
	}
	return rows.Err()
}

func loadComponentLocations(ctx context.Context, db *sql.DB, componentByDBID map[int64]*rig.Component) error {
	rows, err := db.QueryContext(ctx, `SELECT component_id, location_path FROM component_locations`)
	if err != nil {
		return newStoreError(StoreUnavailable, err, "query component_locations")
	}
	defer rows.Close()
	for rows.Next() {
		var compDBID int64
		var loc string
		if err := rows.Scan(&compDBID, &loc); err != nil {
			return newStoreError(StoreUnavailable, err, "scan component_locations row")
		}
		if c, ok := componentByDBID[compDBID]; ok {
			c.Locations = append(c.Locations, loc)
		}
	}
	return rows.Err()
}
