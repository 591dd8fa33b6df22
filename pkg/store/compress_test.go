// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/rigraph/pkg/rig"
)

func TestCompress_RoundTripsThroughDecompress(t *testing.T) {
	g := sampleRIG(t)
	want := ToCanonical(g)

	compressed, err := Compress(g)
	require.NoError(t, err)

	got, err := Decompress(compressed)
	require.NoError(t, err)

	assert.Equal(t, want.Repo, got.Repo)
	assert.Equal(t, want.Build, got.Build)
	require.Len(t, got.Components, len(want.Components))
	require.Len(t, got.Runners, len(want.Runners))
	require.Len(t, got.Tests, len(want.Tests))
}

func TestCompress_NeverInflatesASmallGraph(t *testing.T) {
	g := rig.New()
	g.SetRepositoryInfo(&rig.RepositoryInfo{Name: "tiny", RootPath: "/repo/tiny"})

	original, err := ToCanonicalJSON(g)
	require.NoError(t, err)
	compressed, err := Compress(g)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(compressed), len(original))
}

func TestCompress_DedupesRepeatedPathsAboveThreshold(t *testing.T) {
	g := rig.New()
	ev, err := rig.NewEvidence([]string{"CMakeLists.txt:1"}, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		name := "comp" + string(rune('a'+i))
		c, err := rig.NewComponent(name, rig.ComponentStaticLibrary, "cxx",
			[]string{"src/shared/common_utils_header.hpp"}, "lib/"+name+".a", nil, []rig.Evidence{ev})
		require.NoError(t, err)
		require.NoError(t, g.AddComponent(c))
	}

	compressed, err := Compress(g)
	require.NoError(t, err)
	assert.Contains(t, string(compressed), `"lookups"`, "a repeated path string should trigger the optimized envelope")
}
