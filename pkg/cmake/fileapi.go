// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// parseCMakeVersionOutput extracts the version token from the first
// line of `cmake --version` output ("cmake version 3.28.3" -> "3.28.3").
func parseCMakeVersionOutput(out string) string {
	line := strings.SplitN(out, "\n", 2)[0]
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// fileAPIDir is the conventional location of the CMake File API
// exchange directory, relative to the build directory.
const fileAPIDir = ".cmake/api/v1"

// apiQueryKinds are the object kinds this extractor instruments the
// File API for. No other coupling to CMake internals is permitted.
var apiQueryKinds = []string{"codemodel-v2", "cache-v2", "cmakeFiles-v1", "configureLog-v1", "toolchains-v1"}

// writeQueryFiles creates the empty query marker files that instruct
// CMake to emit the corresponding reply objects on its next configure.
func writeQueryFiles(buildDir string) error {
	queryDir := filepath.Join(buildDir, fileAPIDir, "query", "client-rigraph")
	if err := os.MkdirAll(queryDir, 0o755); err != nil {
		return fmt.Errorf("creating file api query directory: %w", err)
	}
	for _, kind := range apiQueryKinds {
		marker := filepath.Join(queryDir, kind)
		if err := os.WriteFile(marker, nil, 0o644); err != nil {
			return fmt.Errorf("writing query marker %s: %w", kind, err)
		}
	}
	return nil
}

// Configure runs `cmake` against repoRoot targeting buildDir with
// compile-commands export enabled, after instrumenting the File API
// query directory. It has no timeout: configure can legitimately take
// minutes on a large project.
func Configure(ctx context.Context, repoRoot, buildDir string) error {
	if err := writeQueryFiles(buildDir); err != nil {
		return newExtractionError(CMakeConfigureFailed, "", 0, err, "preparing file api query directory")
	}

	cmd := exec.CommandContext(ctx, "cmake",
		"-S", repoRoot,
		"-B", buildDir,
		"-DCMAKE_EXPORT_COMPILE_COMMANDS=ON",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return newExtractionError(CMakeConfigureFailed, "", 0, err, "cmake configure failed: %s", string(out))
	}
	return nil
}

// Version shells out to `cmake --version` and returns the first line's
// trailing version token.
func Version(ctx context.Context) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(cctx, "cmake", "--version")
	out, err := cmd.Output()
	if err != nil {
		if cctx.Err() != nil {
			return "", newExtractionError(SubprocessTimeout, "", 0, err, "cmake --version timed out")
		}
		return "", newExtractionError(SubprocessError, "", 0, err, "cmake --version failed")
	}
	return parseCMakeVersionOutput(string(out)), nil
}

// --- File API reply types -------------------------------------------------

// indexReply is the top-level index-<hash>.json written by CMake after
// a configure that found File API queries.
type indexReply struct {
	Reply map[string]json.RawMessage `json:"reply"`
}

type clientReply struct {
	Query struct {
		Responses []struct {
			Kind     string `json:"kind"`
			JSONFile string `json:"jsonFile"`
		} `json:"responses"`
	} `json:"client-rigraph"`
}

// CodemodelReply is the codemodel-v2 reply object: build configurations,
// each naming the projects and targets it produced.
type CodemodelReply struct {
	Configurations []CodemodelConfiguration `json:"configurations"`
	Paths          struct {
		Source string `json:"source"`
		Build  string `json:"build"`
	} `json:"paths"`
}

type CodemodelConfiguration struct {
	Name     string              `json:"name"`
	Projects []CodemodelProject  `json:"projects"`
	Targets  []CodemodelTargetRef `json:"targets"`
}

type CodemodelProject struct {
	Name string `json:"name"`
}

// CodemodelTargetRef points at the separate JSON file describing one
// target in full (CMake splits each target into its own reply file to
// bound individual file size).
type CodemodelTargetRef struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	JSONFile string `json:"jsonFile"`
}

// Target is the full per-target reply object.
type Target struct {
	Name           string             `json:"name"`
	Type           string             `json:"type"`
	ID             string             `json:"id"`
	Sources        []TargetSource     `json:"sources"`
	Artifacts      []TargetArtifact   `json:"artifacts"`
	Dependencies   []TargetDependency `json:"dependencies"`
	CompileGroups  []TargetCompileGroup `json:"compileGroups"`
	Properties     []TargetProperty   `json:"properties"`
	Backtrace      int                `json:"backtrace"`
	BacktraceGraph BacktraceGraph     `json:"backtraceGraph"`
}

type TargetSource struct {
	Path      string `json:"path"`
	Backtrace int    `json:"backtrace"`
}

type TargetArtifact struct {
	Path string `json:"path"`
}

type TargetDependency struct {
	ID string `json:"id"`
}

type TargetCompileGroup struct {
	Language string `json:"language"`
}

type TargetProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// BacktraceGraph is a shared, deduplicated representation of every
// CMakeLists.txt call-site referenced by this target: a node names a
// file/line/command and an optional parent node, forming a chain back
// to the top-level add_executable/add_library/add_custom_target call.
type BacktraceGraph struct {
	Commands []string        `json:"commands"`
	Files    []string        `json:"files"`
	Nodes    []BacktraceNode `json:"nodes"`
}

type BacktraceNode struct {
	File    int  `json:"file"`
	Line    int  `json:"line"`
	Command int  `json:"command"`
	Parent  *int `json:"parent,omitempty"`
}

// CacheReply is the cache-v2 reply: every CMakeCache.txt entry.
type CacheReply struct {
	Entries []CacheEntry `json:"entries"`
}

type CacheEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

func (c CacheReply) Get(name string) (string, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Reader reads File API reply objects from a configured build
// directory's .cmake/api/v1/reply directory.
type Reader struct {
	BuildDir string
}

func NewReader(buildDir string) *Reader { return &Reader{BuildDir: buildDir} }

func (r *Reader) replyDir() string { return filepath.Join(r.BuildDir, fileAPIDir, "reply") }

// findIndex locates the most recent index-*.json file CMake wrote.
func (r *Reader) findIndex() (string, error) {
	entries, err := os.ReadDir(r.replyDir())
	if err != nil {
		return "", newExtractionError(CMakeFileAPIMalformed, r.replyDir(), 0, err, "reading file api reply directory")
	}
	var latest string
	for _, e := range entries {
		if len(e.Name()) > 6 && e.Name()[:6] == "index-" {
			if e.Name() > latest {
				latest = e.Name()
			}
		}
	}
	if latest == "" {
		return "", newExtractionError(CMakeFileAPIMalformed, r.replyDir(), 0, nil, "no index-*.json found; was cmake configured with file api queries?")
	}
	return filepath.Join(r.replyDir(), latest), nil
}

// replyFileFor returns the path to the reply JSON file registered under
// the given query kind (e.g. "codemodel-v2") in the client-rigraph index.
func (r *Reader) replyFileFor(kind string) (string, error) {
	indexPath, err := r.findIndex()
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return "", newExtractionError(CMakeFileAPIMalformed, indexPath, 0, err, "reading index file")
	}

	var idx indexReply
	if err := json.Unmarshal(raw, &idx); err != nil {
		return "", newExtractionError(CMakeFileAPIMalformed, indexPath, 0, err, "parsing index file")
	}

	clientRaw, ok := idx.Reply["client-rigraph"]
	if !ok {
		return "", newExtractionError(CMakeFileAPIMalformed, indexPath, 0, nil, "index missing client-rigraph responses")
	}
	var client clientReply
	if err := json.Unmarshal([]byte(`{"client-rigraph":`+string(clientRaw)+`}`), &client); err != nil {
		return "", newExtractionError(CMakeFileAPIMalformed, indexPath, 0, err, "parsing client responses")
	}
	for _, resp := range client.Query.Responses {
		if resp.Kind == kind {
			return filepath.Join(r.replyDir(), resp.JSONFile), nil
		}
	}
	return "", newExtractionError(CMakeFileAPIMalformed, indexPath, 0, nil, "no reply found for query kind %q", kind)
}

func readJSON[T any](path string) (T, error) {
	var zero T
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, newExtractionError(CMakeFileAPIMalformed, path, 0, err, "reading reply file")
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, newExtractionError(CMakeFileAPIMalformed, path, 0, err, "parsing reply file")
	}
	return v, nil
}

// Codemodel reads and parses the codemodel-v2 reply.
func (r *Reader) Codemodel() (*CodemodelReply, error) {
	path, err := r.replyFileFor("codemodel-v2")
	if err != nil {
		return nil, err
	}
	reply, err := readJSON[CodemodelReply](path)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Cache reads and parses the cache-v2 reply.
func (r *Reader) Cache() (*CacheReply, error) {
	path, err := r.replyFileFor("cache-v2")
	if err != nil {
		return nil, err
	}
	reply, err := readJSON[CacheReply](path)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

// Target reads and parses a single target's full reply file, given the
// target reference from the configuration. The file is resolved in the
// reader's reply directory, beside the codemodel reply (targets
// reference sibling files by name).
func (r *Reader) Target(ref CodemodelTargetRef) (*Target, error) {
	path := filepath.Join(r.replyDir(), ref.JSONFile)
	target, err := readJSON[Target](path)
	if err != nil {
		return nil, err
	}
	return &target, nil
}
