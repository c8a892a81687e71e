//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Package graph models the agent node/edge graph that trace events execute
// against, and derives the lookup and ordering structures the timeline
// assembler needs: a node identity index and a breadth-first execution order.
package graph

// Node is one vertex of the agent graph. Data is the node's free-form
// configuration payload; its shape depends on the node type.
type Node struct {
	// ID is the node's unique identifier.
	ID string `json:"id"`
	// Name is an optional display alias. It may collide with another
	// node's ID.
	Name string `json:"name,omitempty"`
	// Type is the raw node type tag, e.g. "generator" or "input__basic".
	Type string `json:"type,omitempty"`
	// Data is the node's configuration payload.
	Data map[string]any `json:"data,omitempty"`
	// X, Y are editor canvas coordinates, carried through to log entries
	// for a couple of special-cased render orderings.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
}

// Kind returns the node's parsed category.
func (n *Node) Kind() Kind {
	return ParseKind(n.Type)
}

// DisplayName returns the name if set, otherwise the id.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Edge is a directed connection between two nodes. No acyclicity is
// guaranteed by producers; traversals must carry their own visited set.
type Edge struct {
	// Source is the origin node id.
	Source string `json:"source"`
	// Target is the destination node id.
	Target string `json:"target"`
}

// Graph is a snapshot of the editor's current node/edge state.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// EntryNode returns the graph's designated entry point: the first node whose
// kind is input. It returns nil when the graph has none.
func (g *Graph) EntryNode() *Node {
	if g == nil {
		return nil
	}
	for _, n := range g.Nodes {
		if n != nil && n.Kind() == KindInput {
			return n
		}
	}
	return nil
}
