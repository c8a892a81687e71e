//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package graph

import "strings"

// syntheticPrefixes are the retriever-subtype tags the execution engine
// prepends to node ids in trace events. Resolution strips them before the
// second lookup attempt.
var syntheticPrefixes = []string{
	TypeRetrieverKnowledge,
	TypeRetrieverHyDE,
	TypeRetrieverMultiQuery,
}

// Index resolves raw event node identifiers to canonical node records.
// Resolution never fails: identifiers with no match synthesize a record so
// downstream formatting can proceed with the raw id as display name.
type Index struct {
	byKey map[string]*Node
	nodes []*Node
}

// NewIndex builds an Index over the graph's nodes. Every node is keyed by its
// id; a node with a distinct display name is additionally keyed by that name.
// When two nodes claim the same name the first registration wins, so lookup
// results are stable in node order.
func NewIndex(g *Graph) *Index {
	idx := &Index{byKey: make(map[string]*Node)}
	if g == nil {
		return idx
	}
	idx.nodes = g.Nodes
	for _, n := range g.Nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if _, exists := idx.byKey[n.ID]; !exists {
			idx.byKey[n.ID] = n
		}
		if n.Name != "" && n.Name != n.ID {
			if _, exists := idx.byKey[n.Name]; !exists {
				idx.byKey[n.Name] = n
			}
		}
	}
	return idx
}

// Resolve maps a raw node identifier to a node record. Resolution order,
// first match wins:
//  1. exact id/name lookup,
//  2. exact lookup after stripping a synthetic retriever-subtype prefix,
//  3. linear scan for a node whose id or name is a substring of the raw id
//     or contains it,
//  4. a synthesized record carrying the raw id.
func (idx *Index) Resolve(rawID string) *Node {
	if n, ok := idx.byKey[rawID]; ok {
		return n
	}
	if stripped, ok := stripSyntheticPrefix(rawID); ok {
		if n, ok := idx.byKey[stripped]; ok {
			return n
		}
	}
	for _, n := range idx.nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if containsEither(rawID, n.ID) || (n.Name != "" && containsEither(rawID, n.Name)) {
			return n
		}
	}
	return &Node{ID: rawID, Name: rawID, Data: map[string]any{}}
}

// stripSyntheticPrefix removes a known retriever-subtype prefix plus any
// separator underscores from the front of the raw id.
func stripSyntheticPrefix(rawID string) (string, bool) {
	for _, prefix := range syntheticPrefixes {
		if !strings.HasPrefix(rawID, prefix) {
			continue
		}
		rest := strings.TrimLeft(strings.TrimPrefix(rawID, prefix), "_")
		if rest != "" {
			return rest, true
		}
	}
	return "", false
}

func containsEither(rawID, key string) bool {
	return strings.Contains(rawID, key) || strings.Contains(key, rawID)
}
