// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cmake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBacktraceEvidence_UsesLeafNodeWhenComplete(t *testing.T) {
	graph := BacktraceGraph{
		Files: []string{"CMakeLists.txt"},
		Nodes: []BacktraceNode{
			{File: 0, Line: 42, Command: 0},
		},
	}
	file, line, ok := ResolveBacktraceEvidence(graph, 0)
	assert.True(t, ok)
	assert.Equal(t, "CMakeLists.txt", file)
	assert.Equal(t, 42, line)
}

func TestResolveBacktraceEvidence_FallsBackToParentWhenLeafIncomplete(t *testing.T) {
	parent := 1
	graph := BacktraceGraph{
		Files: []string{"", "tests/CMakeLists.txt"},
		Nodes: []BacktraceNode{
			{File: -1, Line: 0, Parent: &parent},
			{File: 1, Line: 17, Command: 0},
		},
	}
	file, line, ok := ResolveBacktraceEvidence(graph, 0)
	assert.True(t, ok)
	assert.Equal(t, "tests/CMakeLists.txt", file)
	assert.Equal(t, 17, line)
}

func TestResolveBacktraceEvidence_NoResolutionWhenChainExhausted(t *testing.T) {
	graph := BacktraceGraph{
		Files: []string{""},
		Nodes: []BacktraceNode{
			{File: -1, Line: 0},
		},
	}
	_, _, ok := ResolveBacktraceEvidence(graph, 0)
	assert.False(t, ok)
}

func TestResolveBacktraceEvidence_OutOfRangeIndexFails(t *testing.T) {
	graph := BacktraceGraph{}
	_, _, ok := ResolveBacktraceEvidence(graph, 5)
	assert.False(t, ok)
}
