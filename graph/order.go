//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package graph

// disconnectedBase is the order assigned to the first node unreachable from
// the entry point; later unreachable nodes count up from it, so disconnected
// nodes always sort after every reachable one.
const disconnectedBase = 999

// ComputeOrder assigns each node a breadth-first execution order starting
// from the graph's entry node. The returned map is keyed by both node id and
// distinct display name, matching how trace events may reference nodes.
//
// The entry node gets order 0 and each edge hop adds one. When a later,
// shorter path reaches an already-visited node its order is lowered, but the
// improvement is not re-propagated to nodes already expanded from it; on
// convergent (diamond) graphs a descendant can keep a stale, higher order.
// Callers rely on this exact behavior, so keep it.
//
// Nodes with no path from the entry (or every node, when the graph has no
// entry) receive disconnectedBase plus a counter in node-list order.
func ComputeOrder(g *Graph) map[string]int {
	order := make(map[string]int)
	if g == nil {
		return order
	}
	visited := make(map[string]bool)

	setOrder := func(n *Node, o int) {
		order[n.ID] = o
		if n.Name != "" && n.Name != n.ID {
			order[n.Name] = o
		}
	}

	byID := make(map[string]*Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if n != nil && n.ID != "" {
			if _, ok := byID[n.ID]; !ok {
				byID[n.ID] = n
			}
		}
	}

	if entry := g.EntryNode(); entry != nil {
		queue := []*Node{entry}
		visited[entry.ID] = true
		setOrder(entry, 0)
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			next := order[current.ID] + 1
			for _, e := range g.Edges {
				if e == nil || e.Source != current.ID {
					continue
				}
				target, ok := byID[e.Target]
				if !ok {
					continue
				}
				if !visited[target.ID] {
					visited[target.ID] = true
					setOrder(target, next)
					queue = append(queue, target)
				} else if order[target.ID] > next {
					// Shorter path found after first touch; lower the order.
					// No re-propagation to already-expanded descendants.
					setOrder(target, next)
				}
			}
		}
	}

	disconnected := 0
	for _, n := range g.Nodes {
		if n == nil || n.ID == "" || visited[n.ID] {
			continue
		}
		setOrder(n, disconnectedBase+disconnected)
		disconnected++
	}
	return order
}
