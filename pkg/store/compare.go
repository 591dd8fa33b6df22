// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kraklabs/rigraph/pkg/rig"
)

// Compare reports whether a and b describe the same repository,
// independent of which process extracted them. Both graphs are
// normalized to stable, content-derived ids first, so two extraction
// runs over an unchanged repository compare identical even though
// their process-scoped ids (comp-1, comp-2, ...) never match.
//
// identical is true iff the two canonical, sorted JSON representations
// are equal. When they differ, diff holds a unified diff between them
// (fromfile "a", tofile "b") suitable for a CLI to print directly.
func Compare(a, b *rig.RIG) (diff string, identical bool, err error) {
	aSorted, err := sortedCanonicalJSON(Normalize(a))
	if err != nil {
		return "", false, fmt.Errorf("store: compare: %w", err)
	}
	bSorted, err := sortedCanonicalJSON(Normalize(b))
	if err != nil {
		return "", false, fmt.Errorf("store: compare: %w", err)
	}
	if aSorted == bSorted {
		return "", true, nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(aSorted),
		B:        difflib.SplitLines(bSorted),
		FromFile: "a",
		ToFile:   "b",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", false, fmt.Errorf("store: compare: generate diff: %w", err)
	}
	return strings.TrimRight(text, "\n"), false, nil
}

// sortedCanonicalJSON renders g's canonical export as indented JSON with
// every list sorted into a stable order, so two semantically equal
// graphs always produce byte-identical text regardless of extraction
// order.
func sortedCanonicalJSON(g *rig.RIG) (string, error) {
	raw, err := json.Marshal(ToCanonical(g))
	if err != nil {
		return "", fmt.Errorf("marshal canonical export: %w", err)
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("unmarshal canonical export: %w", err)
	}
	sorted := sortJSONForComparison(data)
	out, err := json.MarshalIndent(sorted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sorted export: %w", err)
	}
	return string(out), nil
}

// sortJSONForComparison recursively sorts a JSON-compatible value so
// that two structurally equal documents assembled in different orders
// serialize identically: map keys are already sorted by
// encoding/json's map marshaling, so only lists need explicit
// handling. Lists of objects sort by their "name" field when present,
// falling back to the item's own canonical JSON string.
func sortJSONForComparison(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = sortJSONForComparison(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sortJSONForComparison(item)
		}
		sortJSONList(out)
		return out
	default:
		return data
	}
}

func sortJSONList(items []any) {
	if len(items) == 0 {
		return
	}
	if first, ok := items[0].(map[string]any); ok {
		if _, hasName := first["name"]; hasName {
			sort.SliceStable(items, func(i, j int) bool {
				return jsonStringField(items[i], "name") < jsonStringField(items[j], "name")
			})
			return
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return jsonDumps(items[i]) < jsonDumps(items[j])
	})
}

func jsonStringField(item any, field string) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[field].(string)
	return s
}

func jsonDumps(item any) string {
	b, err := json.Marshal(item)
	if err != nil {
		return ""
	}
	return string(b)
}
