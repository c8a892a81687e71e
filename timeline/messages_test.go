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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

func TestBuildFromMessages(t *testing.T) {
	entries := BuildFromMessages([]Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi, how can I help?"},
	})
	require.Len(t, entries, 4, "Expected two entries per message")

	assert.Equal(t, graph.KindInput, entries[0].Type)
	assert.Equal(t, graph.KindUser, entries[1].Type)
	assert.Equal(t, "hello", entries[1].Log)

	assert.Equal(t, graph.KindOutput, entries[2].Type)
	assert.Equal(t, graph.KindGenerator, entries[3].Type)
	assert.Equal(t, "hi, how can I help?", entries[3].Log)
}

func TestBuildFromMessagesTypeFieldFallback(t *testing.T) {
	entries := BuildFromMessages([]Message{
		{Type: "user", Content: "via type field"},
	})
	require.Len(t, entries, 2)
	assert.Equal(t, graph.KindUser, entries[1].Type, "Expected role read from type")
}

func TestBuildFromMessagesSkipsEmpty(t *testing.T) {
	entries := BuildFromMessages([]Message{
		{Role: "user", Content: ""},
		{Role: "assistant", Content: "only me"},
	})
	require.Len(t, entries, 2, "Expected empty messages skipped")
	assert.Equal(t, "only me", entries[1].Log)
}

func TestBuildFromMessagesKeepsConversationOrder(t *testing.T) {
	entries := BuildFromMessages([]Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	})
	require.Len(t, entries, 6)
	var indexes []float64
	for _, e := range entries {
		indexes = append(indexes, e.Index)
	}
	assert.IsNonDecreasing(t, indexes, "Expected message order preserved")
}
