//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalCollapsesNodeIDAliases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"camel", `{"nodeId":"gen1"}`, "gen1"},
		{"snake", `{"node_id":"gen2"}`, "gen2"},
		{"bare", `{"node":"gen3"}`, "gen3"},
		{"name", `{"node_name":"gen4"}`, "gen4"},
		{"camel wins over snake", `{"nodeId":"a","node_id":"b"}`, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			require.NoError(t, json.Unmarshal([]byte(tt.in), &e))
			assert.Equal(t, tt.want, e.NodeID, "Expected canonical node id")
		})
	}
}

func TestUnmarshalTurnNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"positive", `{"turn":3}`, 3},
		{"numeric string", `{"turn":"2"}`, 2},
		{"zero", `{"turn":0}`, 0},
		{"negative", `{"turn":-5}`, 0},
		{"absent", `{}`, 0},
		{"garbage", `{"turn":"abc"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			require.NoError(t, json.Unmarshal([]byte(tt.in), &e))
			assert.Equal(t, tt.want, e.Turn, "Expected normalized turn")
		})
	}
}

func TestUnmarshalCallbackAlias(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"event":"on_chain_start"}`), &e))
	assert.Equal(t, CallbackChainStart, e.Callback, "Expected event field to fill callback")
	assert.True(t, e.IsChainSignal(), "Expected chain signal")
}

func TestNormalize(t *testing.T) {
	events := []*Event{
		{NodeID: "a"},
		{},
		{NodeID: "b", Turn: -1},
	}
	Normalize(events)
	assert.Equal(t, 0, events[0].Index, "Expected first index 0")
	assert.Equal(t, 1, events[1].Index, "Expected second index 1")
	assert.Equal(t, NodeIDUnknown, events[1].NodeID, "Expected unknown node id filled")
	assert.Equal(t, 0, events[2].Turn, "Expected negative turn clamped")
	for _, e := range events {
		assert.NotEmpty(t, e.ID, "Expected generated event ID")
	}
}

func TestUserInputFallback(t *testing.T) {
	e := &Event{Updates: map[string]any{"user_input": "from updates"}}
	got, ok := e.UserInput()
	assert.True(t, ok, "Expected user input present")
	assert.Equal(t, "from updates", got)

	e = &Event{Log: map[string]any{"user_input": "from log"}}
	got, ok = e.UserInput()
	assert.True(t, ok, "Expected log fallback")
	assert.Equal(t, "from log", got)

	e = &Event{}
	_, ok = e.UserInput()
	assert.False(t, ok, "Expected no user input")
}

func TestLLMContentFallback(t *testing.T) {
	e := &Event{LLM: "top"}
	assert.Equal(t, "top", e.LLMContent(), "Expected top-level llm")
	e = &Event{Log: map[string]any{"llm": "nested"}}
	assert.Equal(t, "nested", e.LLMContent(), "Expected nested llm")
}

func TestIsBareChainStart(t *testing.T) {
	e := New("n1", "generator", WithCallback(CallbackChainStart))
	assert.True(t, e.IsBareChainStart(), "Expected bare start marker")

	e = New("n1", "generator",
		WithCallback(CallbackChainStart),
		WithUpdates(map[string]any{"content": "x"}))
	assert.False(t, e.IsBareChainStart(), "Expected payload to disqualify bare start")

	e = New("n1", "generator",
		WithCallback(CallbackChainStart),
		WithProgress("working"))
	assert.False(t, e.IsBareChainStart(), "Expected progress to disqualify bare start")
}

func TestClone(t *testing.T) {
	e := New("n1", "tool", WithToolResult(map[string]any{"result": "ok"}))
	clone := e.Clone()
	clone.ToolResult["result"] = "changed"
	assert.Equal(t, "ok", e.ToolResult["result"], "Expected clone to own its maps")

	var nilEvent *Event
	assert.Nil(t, nilEvent.Clone(), "Expected nil clone of nil event")
}

func TestStringFieldCoercion(t *testing.T) {
	m := map[string]any{
		"s": "text",
		"f": 3.0,
		"b": true,
		"n": nil,
	}
	assert.Equal(t, "text", String(m, "s"))
	assert.Equal(t, "3", String(m, "f"), "Expected float coerced without decimals")
	assert.Equal(t, "true", String(m, "b"))
	assert.Equal(t, "", String(m, "n"), "Expected nil value to read empty")
	assert.Equal(t, "", String(m, "missing"))
	assert.Equal(t, "", String(nil, "any"), "Expected nil map to read empty")
}
