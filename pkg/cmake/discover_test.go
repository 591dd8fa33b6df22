// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
}

func TestDiscoverListsFiles_FindsTopLevelAndNestedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "CMakeLists.txt"))
	writeFile(t, filepath.Join(root, "src", "CMakeLists.txt"))
	writeFile(t, filepath.Join(root, "cmake", "modules", "FindThing.cmake"))

	got, err := DiscoverListsFiles(root, "", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"CMakeLists.txt",
		"src/CMakeLists.txt",
		"cmake/modules/FindThing.cmake",
	}, got)
}

func TestDiscoverListsFiles_SkipsBuildDirectory(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	writeFile(t, filepath.Join(root, "CMakeLists.txt"))
	writeFile(t, filepath.Join(buildDir, "CMakeFiles", "CMakeLists.txt"))

	got, err := DiscoverListsFiles(root, buildDir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"CMakeLists.txt"}, got)
}

func TestDiscoverListsFiles_SkipsDefaultExcludedDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "CMakeLists.txt"))
	writeFile(t, filepath.Join(root, ".git", "CMakeLists.txt"))
	writeFile(t, filepath.Join(root, "_deps", "foo-src", "CMakeLists.txt"))

	got, err := DiscoverListsFiles(root, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"CMakeLists.txt"}, got)
}

func TestDiscoverListsFiles_HonorsExtraExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "CMakeLists.txt"))
	writeFile(t, filepath.Join(root, "vendor", "CMakeLists.txt"))

	got, err := DiscoverListsFiles(root, "", []string{"vendor"})
	require.NoError(t, err)
	assert.Equal(t, []string{"CMakeLists.txt"}, got)
}
