// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package store persists a Repository Intelligence Graph to a SQLite
// database, one RIG per database file, and loads it back. It also
// provides content-based normalization, semantic comparison, and an
// LLM-friendly JSON compression of a graph (see normalize.go,
// compare.go, compress.go).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Store is a SQLite-backed home for a single RIG.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists. The returned Store holds the connection
// pool for the lifetime of the process; callers should Close it when
// done.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, newStoreError(StoreUnavailable, err, "open %q", path)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, newStoreError(StoreUnavailable, err, "enable foreign keys on %q", path)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, newStoreError(StoreUnavailable, err, "create schema on %q", path)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes g to the database, replacing any RIG already stored
// there. The whole operation runs in a single transaction: either every
// table is updated or none is.
func (s *Store) Save(ctx context.Context, g *rig.RIG, description string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStoreError(TransactionFailed, err, "begin save transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearAll(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO rig_metadata (id, description) VALUES (1, ?)`, description); err != nil {
		return newStoreError(TransactionFailed, err, "insert rig_metadata")
	}
	if g.RepositoryInfo != nil {
		if err := saveRepositoryInfo(ctx, tx, g.RepositoryInfo); err != nil {
			return err
		}
	}
	if g.BuildSystemInfo != nil {
		if err := saveBuildSystemInfo(ctx, tx, g.BuildSystemInfo); err != nil {
			return err
		}
	}

	evidenceMap, err := saveEvidence(ctx, tx, g)
	if err != nil {
		return err
	}
	pmMap, err := savePackageManagers(ctx, tx, g)
	if err != nil {
		return err
	}
	epMap, err := saveExternalPackages(ctx, tx, g, pmMap)
	if err != nil {
		return err
	}
	componentMap, err := saveComponents(ctx, tx, g)
	if err != nil {
		return err
	}
	aggregatorMap, err := saveAggregators(ctx, tx, g)
	if err != nil {
		return err
	}
	runnerMap, err := saveRunners(ctx, tx, g)
	if err != nil {
		return err
	}
	testMap, err := saveTests(ctx, tx, g, componentMap, runnerMap)
	if err != nil {
		return err
	}

	if err := saveNodeEvidence(ctx, tx, g, evidenceMap, componentMap, aggregatorMap, runnerMap, testMap); err != nil {
		return err
	}
	if err := saveDependencies(ctx, tx, g, componentMap, aggregatorMap, runnerMap, testMap); err != nil {
		return err
	}
	if err := saveRunnerArgsNodes(ctx, tx, g, runnerMap, componentMap, aggregatorMap, testMap); err != nil {
		return err
	}
	if err := saveTestRelationships(ctx, tx, g, testMap, componentMap); err != nil {
		return err
	}
	if err := saveSourceFiles(ctx, tx, g, componentMap, testMap); err != nil {
		return err
	}
	if err := saveExternalPackageRelationships(ctx, tx, g, componentMap, epMap); err != nil {
		return err
	}
	if err := saveComponentLocations(ctx, tx, g, componentMap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return newStoreError(TransactionFailed, err, "commit save transaction")
	}
	return nil
}

func clearAll(ctx context.Context, tx *sql.Tx) error {
	for _, table := range clearTableOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return newStoreError(TransactionFailed, err, "clear table %q", table)
		}
	}
	return nil
}

func saveRepositoryInfo(ctx context.Context, tx *sql.Tx, repo *rig.RepositoryInfo) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO repository_info (name, root_path, build_directory, output_directory,
			install_directory, configure_command, build_command, install_command, test_command)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		repo.Name, repo.RootPath, nullIfEmpty(repo.BuildDirectory), nullIfEmpty(repo.OutputDirectory),
		nullIfEmpty(repo.InstallDirectory), nullIfEmpty(repo.ConfigureCommand), nullIfEmpty(repo.BuildCommand),
		nullIfEmpty(repo.InstallCommand), nullIfEmpty(repo.TestCommand))
	if err != nil {
		return newStoreError(TransactionFailed, err, "insert repository_info")
	}
	return nil
}

func saveBuildSystemInfo(ctx context.Context, tx *sql.Tx, bs *rig.BuildSystemInfo) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO build_system_info (name, version, build_type) VALUES (?, ?, ?)`,
		bs.Name, bs.Version, bs.BuildType)
	if err != nil {
		return newStoreError(TransactionFailed, err, "insert build_system_info")
	}
	return nil
}

func saveEvidence(ctx context.Context, tx *sql.Tx, g *rig.RIG) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, id := range allEvidenceIDs(g) {
		ev, _ := g.GetEvidenceByID(id)
		lineJSON, err := jsonOrNil(ev.Line)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "marshal evidence %q line", ev.ID)
		}
		callStackJSON, err := jsonOrNil(ev.CallStack)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "marshal evidence %q call stack", ev.ID)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO evidence (evidence_string_id, line_json, call_stack_json) VALUES (?, ?, ?)`,
			ev.ID, lineJSON, callStackJSON)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert evidence %q", ev.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read evidence %q insert id", ev.ID)
		}
		out[ev.ID] = dbID
	}
	return out, nil
}

// allEvidenceIDs collects every evidence id referenced by any node,
// since rig.RIG does not expose a direct evidence iterator beyond
// GetEvidenceByID.
func allEvidenceIDs(g *rig.RIG) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(list []rig.Evidence) {
		for _, e := range list {
			if _, ok := seen[e.ID]; ok {
				continue
			}
			seen[e.ID] = struct{}{}
			ids = append(ids, e.ID)
		}
	}
	for _, n := range g.AllNodes() {
		add(n.EvidenceList())
	}
	return ids
}

func savePackageManagers(ctx context.Context, tx *sql.Tx, g *rig.RIG) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, pm := range g.PackageManagers() {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO package_managers (pm_string_id, name, package_name) VALUES (?, ?, ?)`,
			pm.ID, pm.Name, pm.PackageName)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert package manager %q", pm.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read package manager %q insert id", pm.ID)
		}
		out[pm.ID] = dbID
	}
	return out, nil
}

func saveExternalPackages(ctx context.Context, tx *sql.Tx, g *rig.RIG, pmMap map[string]int64) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, ep := range g.ExternalPackages() {
		pmDBID, ok := pmMap[ep.Manager.ID]
		if !ok {
			return nil, newStoreError(TransactionFailed, nil, "external package %q references unknown package manager %q", ep.ID, ep.Manager.ID)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO external_packages (ep_string_id, name, package_manager_id) VALUES (?, ?, ?)`,
			ep.ID, ep.Name, pmDBID)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert external package %q", ep.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read external package %q insert id", ep.ID)
		}
		out[ep.ID] = dbID
	}
	return out, nil
}

func saveComponents(ctx context.Context, tx *sql.Tx, g *rig.RIG) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, c := range g.Components() {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO components (comp_string_id, name, type, relative_path, programming_language)
			VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, string(c.Type), c.RelativePath, c.ProgrammingLanguage)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert component %q", c.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read component %q insert id", c.ID)
		}
		out[c.ID] = dbID
	}
	return out, nil
}

func saveAggregators(ctx context.Context, tx *sql.Tx, g *rig.RIG) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, a := range g.Aggregators() {
		res, err := tx.ExecContext(ctx, `INSERT INTO aggregators (agg_string_id, name) VALUES (?, ?)`, a.ID, a.Name)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert aggregator %q", a.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read aggregator %q insert id", a.ID)
		}
		out[a.ID] = dbID
	}
	return out, nil
}

func saveRunners(ctx context.Context, tx *sql.Tx, g *rig.RIG) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, r := range g.Runners() {
		argsJSON, err := jsonOrNil(r.Arguments)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "marshal runner %q arguments", r.ID)
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO runners (runner_string_id, name, arguments_json) VALUES (?, ?, ?)`,
			r.ID, r.Name, argsJSON)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert runner %q", r.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read runner %q insert id", r.ID)
		}
		out[r.ID] = dbID
	}
	return out, nil
}

func saveTests(ctx context.Context, tx *sql.Tx, g *rig.RIG, componentMap, runnerMap map[string]int64) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, t := range g.Tests() {
		var execDBID sql.NullInt64
		var execType sql.NullString
		if t.TestExecutable != nil {
			switch t.TestExecutable.NodeKind() {
			case rig.NodeComponent:
				if id, ok := componentMap[t.TestExecutable.NodeID()]; ok {
					execDBID = sql.NullInt64{Int64: id, Valid: true}
					execType = sql.NullString{String: "component", Valid: true}
				}
			case rig.NodeRunner:
				if id, ok := runnerMap[t.TestExecutable.NodeID()]; ok {
					execDBID = sql.NullInt64{Int64: id, Valid: true}
					execType = sql.NullString{String: "runner", Valid: true}
				}
			}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tests (test_string_id, name, test_executable_component_id, test_executable_type, test_framework)
			VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.Name, execDBID, execType, t.TestFramework)
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "insert test %q", t.ID)
		}
		dbID, err := res.LastInsertId()
		if err != nil {
			return nil, newStoreError(TransactionFailed, err, "read test %q insert id", t.ID)
		}
		out[t.ID] = dbID
	}
	return out, nil
}

func saveNodeEvidence(ctx context.Context, tx *sql.Tx, g *rig.RIG, evidenceMap,
	componentMap, aggregatorMap, runnerMap, testMap map[string]int64) error {
	insertFor := func(nodeType string, id string, idMap map[string]int64, evidence []rig.Evidence) error {
		nodeDBID, ok := idMap[id]
		if !ok {
			return nil
		}
		for _, e := range evidence {
			evDBID, ok := evidenceMap[e.ID]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO node_evidence (node_type, node_id, evidence_id) VALUES (?, ?, ?)`,
				nodeType, nodeDBID, evDBID); err != nil {
				return newStoreError(TransactionFailed, err, "insert node_evidence for %s %q", nodeType, id)
			}
		}
		return nil
	}
	for _, c := range g.Components() {
		if err := insertFor("component", c.ID, componentMap, c.EvidenceList()); err != nil {
			return err
		}
	}
	for _, a := range g.Aggregators() {
		if err := insertFor("aggregator", a.ID, aggregatorMap, a.EvidenceList()); err != nil {
			return err
		}
	}
	for _, r := range g.Runners() {
		if err := insertFor("runner", r.ID, runnerMap, r.EvidenceList()); err != nil {
			return err
		}
	}
	for _, t := range g.Tests() {
		if err := insertFor("test", t.ID, testMap, t.EvidenceList()); err != nil {
			return err
		}
	}
	return nil
}

func saveDependencies(ctx context.Context, tx *sql.Tx, g *rig.RIG, componentMap, aggregatorMap, runnerMap, testMap map[string]int64) error {
	insertFor := func(table string, nodeColumn string, nodeDBID int64, deps []rig.Node) error {
		for _, dep := range deps {
			depType, depDBID, ok := resolveNodeRef(dep, componentMap, aggregatorMap, runnerMap, nil)
			if !ok {
				continue
			}
			q := fmt.Sprintf(`INSERT INTO %s (%s, depends_on_type, depends_on_id) VALUES (?, ?, ?)`, table, nodeColumn)
			if _, err := tx.ExecContext(ctx, q, nodeDBID, depType, depDBID); err != nil {
				return newStoreError(TransactionFailed, err, "insert %s", table)
			}
		}
		return nil
	}
	for _, c := range g.Components() {
		if err := insertFor("component_dependencies", "component_id", componentMap[c.ID], c.Dependencies()); err != nil {
			return err
		}
	}
	for _, a := range g.Aggregators() {
		if err := insertFor("aggregator_dependencies", "aggregator_id", aggregatorMap[a.ID], a.Dependencies()); err != nil {
			return err
		}
	}
	for _, r := range g.Runners() {
		if err := insertFor("runner_dependencies", "runner_id", runnerMap[r.ID], r.Dependencies()); err != nil {
			return err
		}
	}
	for _, t := range g.Tests() {
		if err := insertFor("test_dependencies", "test_id", testMap[t.ID], t.Dependencies()); err != nil {
			return err
		}
	}
	return nil
}

func saveRunnerArgsNodes(ctx context.Context, tx *sql.Tx, g *rig.RIG, runnerMap, componentMap, aggregatorMap, testMap map[string]int64) error {
	for _, r := range g.Runners() {
		runnerDBID, ok := runnerMap[r.ID]
		if !ok {
			continue
		}
		for _, n := range r.ArgsNodes {
			argType, argDBID, ok := resolveNodeRef(n, componentMap, aggregatorMap, runnerMap, testMap)
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO runner_args_nodes (runner_id, args_node_type, args_node_id) VALUES (?, ?, ?)`,
				runnerDBID, argType, argDBID); err != nil {
				return newStoreError(TransactionFailed, err, "insert runner_args_nodes for %q", r.ID)
			}
		}
	}
	return nil
}

func saveTestRelationships(ctx context.Context, tx *sql.Tx, g *rig.RIG, testMap, componentMap map[string]int64) error {
	for _, t := range g.Tests() {
		testDBID, ok := testMap[t.ID]
		if !ok {
			continue
		}
		for _, c := range t.TestComponents {
			compDBID, ok := componentMap[c.ID]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO test_components (test_id, component_id) VALUES (?, ?)`, testDBID, compDBID); err != nil {
				return newStoreError(TransactionFailed, err, "insert test_components for %q", t.ID)
			}
		}
		for _, c := range t.ComponentsBeingTested {
			compDBID, ok := componentMap[c.ID]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO test_components_being_tested (test_id, component_id) VALUES (?, ?)`, testDBID, compDBID); err != nil {
				return newStoreError(TransactionFailed, err, "insert test_components_being_tested for %q", t.ID)
			}
		}
	}
	return nil
}

func saveSourceFiles(ctx context.Context, tx *sql.Tx, g *rig.RIG, componentMap, testMap map[string]int64) error {
	for _, c := range g.Components() {
		compDBID, ok := componentMap[c.ID]
		if !ok {
			continue
		}
		for _, sf := range c.SourceFiles {
			if _, err := tx.ExecContext(ctx, `INSERT INTO component_source_files (component_id, source_file_path) VALUES (?, ?)`, compDBID, sf); err != nil {
				return newStoreError(TransactionFailed, err, "insert component_source_files for %q", c.ID)
			}
		}
	}
	for _, t := range g.Tests() {
		testDBID, ok := testMap[t.ID]
		if !ok {
			continue
		}
		for _, sf := range t.SourceFiles {
			if _, err := tx.ExecContext(ctx, `INSERT INTO test_source_files (test_id, source_file_path) VALUES (?, ?)`, testDBID, sf); err != nil {
				return newStoreError(TransactionFailed, err, "insert test_source_files for %q", t.ID)
			}
		}
	}
	return nil
}

func saveExternalPackageRelationships(ctx context.Context, tx *sql.Tx, g *rig.RIG, componentMap, epMap map[string]int64) error {
	for _, c := range g.Components() {
		compDBID, ok := componentMap[c.ID]
		if !ok {
			continue
		}
		for _, ep := range c.ExternalPackages {
			epDBID, ok := epMap[ep.ID]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO component_external_packages (component_id, external_package_id) VALUES (?, ?)`,
				compDBID, epDBID); err != nil {
				return newStoreError(TransactionFailed, err, "insert component_external_packages for %q", c.ID)
			}
		}
	}
	return nil
}

func saveComponentLocations(ctx context.Context, tx *sql.Tx, g *rig.RIG, componentMap map[string]int64) error {
	for _, c := range g.Components() {
		compDBID, ok := componentMap[c.ID]
		if !ok {
			continue
		}
		for _, loc := range c.Locations {
			if _, err := tx.ExecContext(ctx, `INSERT INTO component_locations (component_id, location_path) VALUES (?, ?)`, compDBID, loc); err != nil {
				return newStoreError(TransactionFailed, err, "insert component_locations for %q", c.ID)
			}
		}
	}
	return nil
}

// resolveNodeRef returns the type discriminator and db id for a
// dependency or args-node reference. testMap may be nil for dependency
// edges, which are never tests; args-node edges pass it since a
// runner's arguments may reference a test.
func resolveNodeRef(n rig.Node, componentMap, aggregatorMap, runnerMap, testMap map[string]int64) (string, int64, bool) {
	switch n.NodeKind() {
	case rig.NodeComponent:
		id, ok := componentMap[n.NodeID()]
		return "component", id, ok
	case rig.NodeAggregator:
		id, ok := aggregatorMap[n.NodeID()]
		return "aggregator", id, ok
	case rig.NodeRunner:
		id, ok := runnerMap[n.NodeID()]
		return "runner", id, ok
	case rig.NodeTest:
		if testMap == nil {
			return "", 0, false
		}
		id, ok := testMap[n.NodeID()]
		return "test", id, ok
	default:
		return "", 0, false
	}
}

func jsonOrNil(v any) (any, error) {
	switch vv := v.(type) {
	case []string:
		if len(vv) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
