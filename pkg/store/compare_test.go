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

func TestCompare_IndependentExtractionRunsCompareIdentical(t *testing.T) {
	diff, identical, err := Compare(sampleRIG(t), sampleRIG(t))
	require.NoError(t, err)
	assert.True(t, identical, "two extractions of the same content should compare identical: %s", diff)
	assert.Empty(t, diff)
}

func TestCompare_DetectsAnAddedComponent(t *testing.T) {
	a := sampleRIG(t)
	b := sampleRIG(t)

	ev, err := rig.NewEvidence([]string{"CMakeLists.txt:99"}, nil)
	require.NoError(t, err)
	extra, err := rig.NewComponent("extra_tool", rig.ComponentExecutable, "cxx",
		[]string{"src/extra.cpp"}, "bin/extra_tool", nil, []rig.Evidence{ev})
	require.NoError(t, err)
	require.NoError(t, b.AddComponent(extra))

	diff, identical, err := Compare(a, b)
	require.NoError(t, err)
	assert.False(t, identical)
	assert.Contains(t, diff, "extra_tool")
}

func TestCompare_ReportsNoDiffTextWhenIdentical(t *testing.T) {
	diff, identical, err := Compare(sampleRIG(t), sampleRIG(t))
	require.NoError(t, err)
	require.True(t, identical)
	assert.Empty(t, diff)
}
