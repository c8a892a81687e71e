//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Package timeline reconstructs a deterministic, human-readable execution log
// from an agent graph's trace-event stream. One assembly pass classifies each
// event, renders it through a per-node-kind formatter, merges streaming
// updates into their existing entries, resolves the single final answer for
// the latest turn, and totally orders the result.
package timeline

import (
	"time"

	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

// timeLayout formats entry timestamps for display.
const timeLayout = "15:04:05"

// Entry is one rendered block of the reconstructed log: the contract the
// render layer consumes.
type Entry struct {
	// Time is the display timestamp, empty when the source event carried
	// none.
	Time string `json:"time"`
	// Log is the rendered multi-line text.
	Log string `json:"log"`
	// Type is the entry's category, used for rendering and sort
	// tie-breaking.
	Type graph.Kind `json:"type"`
	// Index is the originating event's stream position. Fractional values
	// force ordering before or after integer positions.
	Index float64 `json:"index"`
	// NodeID is the resolved node id, when the entry belongs to a node.
	NodeID string `json:"nodeId,omitempty"`
	// NodeX, NodeY carry the resolved node's editor position.
	NodeX float64 `json:"nodeX,omitempty"`
	NodeY float64 `json:"nodeY,omitempty"`
	// ExecutionOrder is the node's graph order, or the entry's
	// first-appearance event index when the graph supplied none.
	ExecutionOrder int `json:"executionOrder"`
	// Turn is the conversation round the entry belongs to, 0 when untagged.
	Turn int `json:"turn,omitempty"`

	// lastIndex is the stream position of the most recent event merged into
	// this entry; streaming merge windows measure from it.
	lastIndex int
	// head holds the rendered lines above a generator's response section,
	// and content the section itself, so merges can replace the response
	// without re-deriving the header.
	head    string
	content string
	// placeholder marks a bare "execution started" entry that the first
	// real result for the same node and turn replaces in place.
	placeholder bool
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(timeLayout)
}
