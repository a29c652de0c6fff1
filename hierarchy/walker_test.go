// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/dexmill/dex"
)

func names(tg *testGraph, set map[*ClassDef]struct{}) []string {
	var out []string
	for def := range set {
		for name, d := range tg.defs {
			if d == def {
				out = append(out, name)
			}
		}
	}
	return out
}

// TestSuperTypesInclusive verifies the upward closure includes the
// start class and every transitive parent.
func TestSuperTypesInclusive(t *testing.T) {
	tg := buildTestGraph(t)

	supers := SuperTypesInclusive(context.Background(), tg.graph, tg.defs["Impl"], nil)
	assert.ElementsMatch(t,
		[]string{"Impl", "Side", "Marker", "Base", "Object"},
		names(tg, supers))
}

// TestSuperTypesInclusive_Root verifies a root class yields only itself.
func TestSuperTypesInclusive_Root(t *testing.T) {
	tg := buildTestGraph(t)

	supers := SuperTypesInclusive(context.Background(), tg.graph, tg.defs["Object"], nil)
	assert.ElementsMatch(t, []string{"Object"}, names(tg, supers))
}

// TestSuperTypesInclusive_Stop verifies pruning excludes the class and
// its ancestors reached only through it.
func TestSuperTypesInclusive_Stop(t *testing.T) {
	tg := buildTestGraph(t)

	stop := func(def *ClassDef) bool {
		return def == tg.defs["Base"]
	}
	supers := SuperTypesInclusive(context.Background(), tg.graph, tg.defs["Leaf"], stop)
	assert.ElementsMatch(t, []string{"Leaf", "Mid"}, names(tg, supers))
}

// TestSuperTypesInclusive_StopAlternatePath verifies a class pruned on
// one path is still re-checked when reached through another.
func TestSuperTypesInclusive_StopAlternatePath(t *testing.T) {
	tg := buildTestGraph(t)

	// Stop Object only on the first encounter. With two paths to
	// Object (via Side and via Marker), the second discovery must
	// re-evaluate the predicate and admit it.
	stopped := false
	stop := func(def *ClassDef) bool {
		if def == tg.defs["Object"] && !stopped {
			stopped = true
			return true
		}
		return false
	}
	supers := SuperTypesInclusive(context.Background(), tg.graph, tg.defs["Impl"], stop)
	assert.Contains(t, names(tg, supers), "Object",
		"a pruned class rediscovered via another path should be re-checked")
}

// TestSuperTypesInclusive_UnresolvedParent verifies edges to types with
// no loaded definition are skipped.
func TestSuperTypesInclusive_UnresolvedParent(t *testing.T) {
	f := dex.NewFactory()
	g := NewGraph()

	external, err := f.CreateType("Lexternal/Library;")
	require.NoError(t, err)
	own, err := f.CreateType("Lcom/example/Orphan;")
	require.NoError(t, err)
	def := &ClassDef{Type: own, SuperType: external}
	require.NoError(t, g.AddClass(def))
	g.Freeze()

	supers := SuperTypesInclusive(context.Background(), g, def, nil)
	assert.Len(t, supers, 1)
	_, ok := supers[def]
	assert.True(t, ok)
}

// TestSubTypesExclusive verifies the downward closure excludes the
// start class.
func TestSubTypesExclusive(t *testing.T) {
	tg := buildTestGraph(t)

	subs := SubTypesExclusive(context.Background(), tg.graph, tg.defs["Base"], nil)
	assert.ElementsMatch(t,
		[]string{"Mid", "Side", "Leaf", "Impl"},
		names(tg, subs))

	_, containsSelf := subs[tg.defs["Base"]]
	assert.False(t, containsSelf, "exclusive walk must not contain the start")
}

// TestSubTypesExclusive_Interface verifies implementation edges are
// followed downward.
func TestSubTypesExclusive_Interface(t *testing.T) {
	tg := buildTestGraph(t)

	subs := SubTypesExclusive(context.Background(), tg.graph, tg.defs["Marker"], nil)
	assert.ElementsMatch(t, []string{"Impl"}, names(tg, subs))
}

// TestSubTypesExclusive_Leaf verifies a leaf class has no subtypes.
func TestSubTypesExclusive_Leaf(t *testing.T) {
	tg := buildTestGraph(t)
	assert.Empty(t, SubTypesExclusive(context.Background(), tg.graph, tg.defs["Leaf"], nil))
}

// TestSubTypesExclusive_Stop verifies pruning cuts whole branches.
func TestSubTypesExclusive_Stop(t *testing.T) {
	tg := buildTestGraph(t)

	stop := func(def *ClassDef) bool {
		return def == tg.defs["Mid"]
	}
	subs := SubTypesExclusive(context.Background(), tg.graph, tg.defs["Base"], stop)
	assert.ElementsMatch(t, []string{"Side", "Impl"}, names(tg, subs))
}
