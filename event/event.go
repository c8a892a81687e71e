//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Package event defines the trace event consumed by the log reconstruction
// pipeline. Events are produced by an external agent-execution engine and
// ingested as an in-memory snapshot; the only ordering guarantee is each
// event's position in the ingested stream.
package event

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NodeIDUnknown is the canonical node identifier for events that carry none.
const NodeIDUnknown = "unknown"

// Chain lifecycle callback names emitted by the execution engine.
const (
	CallbackChainStart = "on_chain_start"
	CallbackChainEnd   = "on_chain_end"
	CallbackChainError = "on_chain_error"
)

// Event is one observation about a node's activity during graph execution.
// All payload fields are optional; consumers must treat every access as
// best-effort.
type Event struct {
	// ID is the unique identifier of the event, assigned at ingest.
	ID string `json:"id,omitempty"`

	// NodeID is the canonical node identifier. Producers disagree on the
	// field name (node_id, nodeId, node, node_name); UnmarshalJSON collapses
	// them. Empty collapses to NodeIDUnknown.
	NodeID string `json:"nodeId"`

	// NodeType is the raw node type tag, e.g. "generator" or
	// "retriever__knowledge".
	NodeType string `json:"nodeType,omitempty"`

	// Turn identifies the conversation round. Absent or non-positive values
	// normalize to 0 (untagged).
	Turn int `json:"turn,omitempty"`

	// Callback is the lifecycle signal name (on_chain_start et al.). Some
	// producers send it under "event" instead.
	Callback string `json:"callback,omitempty"`

	// Updates holds the state delta produced by the node.
	Updates map[string]any `json:"updates,omitempty"`

	// ToolResult holds the payload returned by a tool invocation.
	ToolResult map[string]any `json:"toolResult,omitempty"`

	// LLM carries incremental generation text. Some producers nest it under
	// Log instead (log.llm).
	LLM string `json:"llm,omitempty"`

	// Log is an auxiliary payload; log.llm and log.user_input are consulted
	// as fallbacks for their top-level counterparts.
	Log map[string]any `json:"log,omitempty"`

	// Progress is a free-text status string.
	Progress string `json:"progress,omitempty"`

	// FinalResult is the terminal answer signal. It may arrive more than
	// once per turn, growing or replaced.
	FinalResult string `json:"finalResult,omitempty"`

	// Timestamp is when the engine emitted the event, if known.
	Timestamp time.Time `json:"timestamp,omitzero"`

	// Index is the event's position in the ingested stream, assigned by
	// Normalize.
	Index int `json:"index"`
}

// rawEvent mirrors the wire shapes we accept. Producers are inconsistent
// about field names, so every alias is listed and collapsed afterwards.
type rawEvent struct {
	ID          string          `json:"id"`
	NodeID      string          `json:"nodeId"`
	NodeIDSnake string          `json:"node_id"`
	Node        string          `json:"node"`
	NodeName    string          `json:"node_name"`
	NodeType    string          `json:"nodeType"`
	TypeSnake   string          `json:"node_type"`
	Turn        json.RawMessage `json:"turn"`
	Callback    string          `json:"callback"`
	EventName   string          `json:"event"`
	Updates     map[string]any  `json:"updates"`
	ToolResult  map[string]any  `json:"toolResult"`
	ToolSnake   map[string]any  `json:"tool_result"`
	LLM         string          `json:"llm"`
	Log         map[string]any  `json:"log"`
	Progress    string          `json:"progress"`
	FinalResult string          `json:"finalResult"`
	FinalSnake  string          `json:"final_result"`
	Timestamp   time.Time       `json:"timestamp"`
}

// UnmarshalJSON collapses the aliased wire fields into their canonical form.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = raw.ID
	e.NodeID = firstNonEmpty(raw.NodeID, raw.NodeIDSnake, raw.Node, raw.NodeName)
	e.NodeType = firstNonEmpty(raw.NodeType, raw.TypeSnake)
	e.Turn = parseTurn(raw.Turn)
	e.Callback = firstNonEmpty(raw.Callback, raw.EventName)
	e.Updates = raw.Updates
	if e.ToolResult = raw.ToolResult; len(e.ToolResult) == 0 {
		e.ToolResult = raw.ToolSnake
	}
	e.LLM = raw.LLM
	e.Log = raw.Log
	e.Progress = raw.Progress
	e.FinalResult = firstNonEmpty(raw.FinalResult, raw.FinalSnake)
	e.Timestamp = raw.Timestamp
	return nil
}

// parseTurn accepts numbers and numeric strings; anything else, and anything
// non-positive, is the untagged turn 0.
func parseTurn(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Normalize assigns stream indexes and fills defaulted fields in place,
// returning the same slice. It is the single ingest point: after Normalize
// every event has a non-empty ID and NodeID and a non-negative Turn.
func Normalize(events []*Event) []*Event {
	for i, e := range events {
		if e == nil {
			continue
		}
		e.Index = i
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.NodeID == "" {
			e.NodeID = NodeIDUnknown
		}
		if e.Turn < 0 {
			e.Turn = 0
		}
	}
	return events
}

// UserInput returns the user input carried by this event, consulting
// updates.user_input first and log.user_input second.
func (e *Event) UserInput() (string, bool) {
	if s, ok := stringField(e.Updates, "user_input"); ok {
		return s, true
	}
	return stringField(e.Log, "user_input")
}

// LLMContent returns the incremental generation text, consulting the
// top-level field first and log.llm second.
func (e *Event) LLMContent() string {
	if e.LLM != "" {
		return e.LLM
	}
	s, _ := stringField(e.Log, "llm")
	return s
}

// HasUpdates reports whether the event carries a non-empty state delta.
func (e *Event) HasUpdates() bool { return len(e.Updates) > 0 }

// HasToolResult reports whether the event carries a tool result payload.
func (e *Event) HasToolResult() bool { return len(e.ToolResult) > 0 }

// HasProgress reports whether the event carries a non-blank progress string.
func (e *Event) HasProgress() bool { return strings.TrimSpace(e.Progress) != "" }

// IsChainSignal reports whether the event is a chain lifecycle callback.
func (e *Event) IsChainSignal() bool {
	switch e.Callback {
	case CallbackChainStart, CallbackChainEnd, CallbackChainError:
		return true
	}
	return false
}

// IsBareChainStart reports whether the event is a chain-start marker with no
// renderable payload attached.
func (e *Event) IsBareChainStart() bool {
	return e.Callback == CallbackChainStart &&
		!e.HasUpdates() && !e.HasToolResult() &&
		e.LLMContent() == "" && !e.HasProgress()
}

// Clone creates a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Updates = cloneMap(e.Updates)
	clone.ToolResult = cloneMap(e.ToolResult)
	clone.Log = cloneMap(e.Log)
	return &clone
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// stringField extracts a string-valued key from a payload map, accepting
// numeric values too; missing or differently typed values report false.
func stringField(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case bool:
		return strconv.FormatBool(s), true
	}
	return "", false
}

// String returns the string value of a payload key, or empty when absent.
// Exposed for the formatters, which read many optional fields defensively.
func String(m map[string]any, key string) string {
	s, _ := stringField(m, key)
	return s
}

// Option configures an Event under construction.
type Option func(*Event)

// WithTurn sets the conversation turn.
func WithTurn(turn int) Option {
	return func(e *Event) { e.Turn = turn }
}

// WithCallback sets the lifecycle callback name.
func WithCallback(callback string) Option {
	return func(e *Event) { e.Callback = callback }
}

// WithUpdates sets the state delta payload.
func WithUpdates(updates map[string]any) Option {
	return func(e *Event) { e.Updates = updates }
}

// WithToolResult sets the tool result payload.
func WithToolResult(result map[string]any) Option {
	return func(e *Event) { e.ToolResult = result }
}

// WithLLM sets the incremental generation text.
func WithLLM(content string) Option {
	return func(e *Event) { e.LLM = content }
}

// WithProgress sets the progress string.
func WithProgress(progress string) Option {
	return func(e *Event) { e.Progress = progress }
}

// WithFinalResult sets the terminal answer signal.
func WithFinalResult(content string) Option {
	return func(e *Event) { e.FinalResult = content }
}

// WithTimestamp sets the emission timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(e *Event) { e.Timestamp = ts }
}

// New creates an Event with a generated ID.
func New(nodeID, nodeType string, opts ...Option) *Event {
	e := &Event{
		ID:       uuid.New().String(),
		NodeID:   nodeID,
		NodeType: nodeType,
	}
	if e.NodeID == "" {
		e.NodeID = NodeIDUnknown
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
