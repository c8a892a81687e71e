//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func chainGraph() *Graph {
	return &Graph{
		Nodes: []*Node{
			{ID: "input1", Type: "input__basic"},
			{ID: "a", Type: "retriever__knowledge"},
			{ID: "b", Type: "generator"},
			{ID: "c", Type: "output__chat"},
		},
		Edges: []*Edge{
			{Source: "input1", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}
}

func TestComputeOrderLinearChain(t *testing.T) {
	order := ComputeOrder(chainGraph())
	assert.Equal(t, 0, order["input1"], "Expected entry order 0")
	assert.Less(t, order["input1"], order["a"], "Expected input before a")
	assert.Less(t, order["a"], order["b"], "Expected a before b")
	assert.Less(t, order["b"], order["c"], "Expected b before c")
}

func TestComputeOrderKeysNameToo(t *testing.T) {
	g := chainGraph()
	g.Nodes[1].Name = "Knowledge Search"
	order := ComputeOrder(g)
	assert.Equal(t, order["a"], order["Knowledge Search"],
		"Expected id and name to share the order value")
}

func TestComputeOrderDisconnected(t *testing.T) {
	g := chainGraph()
	g.Nodes = append(g.Nodes,
		&Node{ID: "island1", Type: "tool"},
		&Node{ID: "island2", Type: "coder"},
	)
	order := ComputeOrder(g)
	for _, reachable := range []string{"input1", "a", "b", "c"} {
		assert.Less(t, order[reachable], order["island1"],
			"Expected %s before disconnected island1", reachable)
	}
	assert.Equal(t, 999, order["island1"], "Expected disconnected base order")
	assert.Equal(t, 1000, order["island2"], "Expected discovery-order offset")
}

func TestComputeOrderNoEntry(t *testing.T) {
	g := &Graph{Nodes: []*Node{
		{ID: "a", Type: "generator"},
		{ID: "b", Type: "tool"},
	}}
	order := ComputeOrder(g)
	assert.Equal(t, 999, order["a"], "Expected every node in fallback branch")
	assert.Equal(t, 1000, order["b"], "Expected every node in fallback branch")
}

func TestComputeOrderEntryWithNoEdges(t *testing.T) {
	g := &Graph{Nodes: []*Node{
		{ID: "input1", Type: "input__basic"},
		{ID: "a", Type: "generator"},
	}}
	order := ComputeOrder(g)
	assert.Equal(t, 0, order["input1"], "Expected entry still ordered 0")
	assert.Equal(t, 999, order["a"], "Expected unreachable node in fallback branch")
}

// Diamond regression: input fans out to both branches and they re-converge.
// Documents current behavior of the relaxation step, which lowers a
// re-converged node's order on a shorter rediscovery but never re-propagates
// the improvement to nodes already expanded from it.
func TestComputeOrderDiamond(t *testing.T) {
	g := &Graph{
		Nodes: []*Node{
			{ID: "input1", Type: "input__basic"},
			{ID: "left", Type: "retriever__knowledge"},
			{ID: "right", Type: "retriever__knowledge"},
			{ID: "join", Type: "merger"},
			{ID: "out", Type: "output__chat"},
		},
		Edges: []*Edge{
			{Source: "input1", Target: "left"},
			{Source: "input1", Target: "right"},
			{Source: "left", Target: "join"},
			{Source: "right", Target: "join"},
			{Source: "join", Target: "out"},
		},
	}
	order := ComputeOrder(g)
	assert.Equal(t, 0, order["input1"])
	assert.Equal(t, 1, order["left"])
	assert.Equal(t, 1, order["right"])
	assert.Equal(t, 2, order["join"], "Expected join at the shorter-path depth")
	assert.Equal(t, 3, order["out"], "Expected descendant one past the join")
}

func TestComputeOrderCycleTerminates(t *testing.T) {
	g := &Graph{
		Nodes: []*Node{
			{ID: "input1", Type: "input__basic"},
			{ID: "a", Type: "generator"},
			{ID: "b", Type: "reviewer"},
		},
		Edges: []*Edge{
			{Source: "input1", Target: "a"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"}, // cycle
		},
	}
	order := ComputeOrder(g)
	assert.Equal(t, 1, order["a"], "Expected cycle not to disturb a's order")
	assert.Equal(t, 2, order["b"])
}

func TestComputeOrderNilGraph(t *testing.T) {
	assert.Empty(t, ComputeOrder(nil), "Expected empty map for nil graph")
}
