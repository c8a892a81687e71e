//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package timeline

import (
	"sort"

	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

// sortEntries totally orders assembled entries. Comparator keys in priority
// order: user entries first, final-result entries last, graph execution
// order, the entry's own execution order, resolved node display name (only
// when node ids differ), raw event index, then the fixed kind priority
// table. The sort is stable, so equal keys keep assembly order.
func sortEntries(entries []*Entry, idx *graph.Index, order map[string]int) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		if au, bu := a.Type == graph.KindUser, b.Type == graph.KindUser; au != bu {
			return au
		}
		if af, bf := a.Type == graph.KindFinalResult, b.Type == graph.KindFinalResult; af != bf {
			return bf
		}

		if ao, bo := graphOrderOf(a, order), graphOrderOf(b, order); ao != bo {
			return ao < bo
		}
		if a.ExecutionOrder != b.ExecutionOrder {
			return a.ExecutionOrder < b.ExecutionOrder
		}
		if a.NodeID != b.NodeID {
			an, bn := displayNameOf(a, idx), displayNameOf(b, idx)
			if an != bn {
				return an < bn
			}
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Type.Priority() < b.Type.Priority()
	})
}

// graphOrderOf looks up the entry's node in the execution order map, falling
// back to the entry's own execution order so unmapped entries still compare
// deterministically.
func graphOrderOf(e *Entry, order map[string]int) int {
	if e.NodeID != "" {
		if o, ok := order[e.NodeID]; ok {
			return o
		}
	}
	return e.ExecutionOrder
}

func displayNameOf(e *Entry, idx *graph.Index) string {
	if e.NodeID == "" {
		return ""
	}
	return idx.Resolve(e.NodeID).DisplayName()
}
