// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

// schemaSQL creates every table the store needs, idempotently. One
// database holds exactly one RIG: rig_metadata is the marker row that
// Load uses to detect an empty or corrupt database.
//
// String ids (comp-1, evidence-3, ...) are kept alongside SQLite's own
// integer rowids: the rowid is what relationship tables reference (fast
// joins), the string id is what round-trips back into the in-memory
// graph on Load.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS rig_metadata (
	id          INTEGER PRIMARY KEY,
	description TEXT
);

CREATE TABLE IF NOT EXISTS repository_info (
	name               TEXT NOT NULL,
	root_path          TEXT NOT NULL,
	build_directory    TEXT,
	output_directory   TEXT,
	install_directory  TEXT,
	configure_command  TEXT,
	build_command      TEXT,
	install_command    TEXT,
	test_command       TEXT
);

CREATE TABLE IF NOT EXISTS build_system_info (
	name       TEXT NOT NULL,
	version    TEXT,
	build_type TEXT
);

CREATE TABLE IF NOT EXISTS evidence (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	evidence_string_id TEXT NOT NULL UNIQUE,
	line_json        TEXT,
	call_stack_json  TEXT
);

CREATE TABLE IF NOT EXISTS package_managers (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	pm_string_id TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	package_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS external_packages (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	ep_string_id       TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL,
	package_manager_id INTEGER NOT NULL REFERENCES package_managers(id)
);

CREATE TABLE IF NOT EXISTS components (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	comp_string_id       TEXT NOT NULL UNIQUE,
	name                 TEXT NOT NULL,
	type                 TEXT NOT NULL,
	relative_path        TEXT NOT NULL,
	programming_language TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS aggregators (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	agg_string_id  TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runners (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	runner_string_id  TEXT NOT NULL UNIQUE,
	name              TEXT NOT NULL,
	arguments_json    TEXT
);

CREATE TABLE IF NOT EXISTS tests (
	id                           INTEGER PRIMARY KEY AUTOINCREMENT,
	test_string_id               TEXT NOT NULL UNIQUE,
	name                         TEXT NOT NULL,
	test_executable_component_id INTEGER,
	test_executable_type         TEXT,
	test_framework               TEXT
);

CREATE TABLE IF NOT EXISTS node_evidence (
	node_type   TEXT NOT NULL,
	node_id     INTEGER NOT NULL,
	evidence_id INTEGER NOT NULL REFERENCES evidence(id)
);

CREATE TABLE IF NOT EXISTS component_dependencies (
	component_id    INTEGER NOT NULL REFERENCES components(id),
	depends_on_type TEXT NOT NULL,
	depends_on_id   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS aggregator_dependencies (
	aggregator_id   INTEGER NOT NULL REFERENCES aggregators(id),
	depends_on_type TEXT NOT NULL,
	depends_on_id   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runner_dependencies (
	runner_id       INTEGER NOT NULL REFERENCES runners(id),
	depends_on_type TEXT NOT NULL,
	depends_on_id   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS test_dependencies (
	test_id         INTEGER NOT NULL REFERENCES tests(id),
	depends_on_type TEXT NOT NULL,
	depends_on_id   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runner_args_nodes (
	runner_id      INTEGER NOT NULL REFERENCES runners(id),
	args_node_type TEXT NOT NULL,
	args_node_id   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS test_components (
	test_id      INTEGER NOT NULL REFERENCES tests(id),
	component_id INTEGER NOT NULL REFERENCES components(id)
);

CREATE TABLE IF NOT EXISTS test_components_being_tested (
	test_id      INTEGER NOT NULL REFERENCES tests(id),
	component_id INTEGER NOT NULL REFERENCES components(id)
);

CREATE TABLE IF NOT EXISTS component_source_files (
	component_id     INTEGER NOT NULL REFERENCES components(id),
	source_file_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS test_source_files (
	test_id          INTEGER NOT NULL REFERENCES tests(id),
	source_file_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS component_external_packages (
	component_id        INTEGER NOT NULL REFERENCES components(id),
	external_package_id INTEGER NOT NULL REFERENCES external_packages(id)
);

CREATE TABLE IF NOT EXISTS component_locations (
	component_id  INTEGER NOT NULL REFERENCES components(id),
	location_path TEXT NOT NULL
);
`

// clearTableOrder lists every table in child-before-parent order so
// Save can clear a previous RIG without tripping a foreign key
// violation. rig_metadata is cleared last since nothing references it
// directly, but it is the marker Load checks first.
var clearTableOrder = []string{
	"node_evidence",
	"component_dependencies",
	"aggregator_dependencies",
	"runner_dependencies",
	"test_dependencies",
	"runner_args_nodes",
	"test_components",
	"test_components_being_tested",
	"component_source_files",
	"test_source_files",
	"component_external_packages",
	"component_locations",
	"tests",
	"runners",
	"aggregators",
	"components",
	"external_packages",
	"package_managers",
	"evidence",
	"build_system_info",
	"repository_info",
	"rig_metadata",
}
