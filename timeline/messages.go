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
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

// Message is one conversation message, the fallback input when no trace
// events exist for a session. Producers disagree on whether the role lives
// under "role" or "type".
type Message struct {
	Role    string `json:"role,omitempty"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content"`
}

// roleOf returns the message role, treating anything but "user" as the
// assistant side.
func (m Message) roleOf() string {
	if m.Role != "" {
		return m.Role
	}
	return m.Type
}

// BuildFromMessages synthesizes a minimal timeline from a plain conversation
// message list: a marker entry plus a content entry per message. Entries keep
// conversation order; the richer sort stage does not apply because there is
// no graph to order against.
func BuildFromMessages(messages []Message) []*Entry {
	entries := make([]*Entry, 0, 2*len(messages))
	for i, m := range messages {
		if m.Content == "" {
			continue
		}
		marker := &Entry{
			Type:           graph.KindOutput,
			Log:            "[output] assistant message",
			Index:          float64(2 * i),
			ExecutionOrder: i,
		}
		content := &Entry{
			Type:           graph.KindGenerator,
			Log:            m.Content,
			Index:          float64(2*i + 1),
			ExecutionOrder: i,
		}
		if m.roleOf() == "user" {
			marker.Type = graph.KindInput
			marker.Log = "[input] user message"
			content.Type = graph.KindUser
		}
		entries = append(entries, marker, content)
	}
	return entries
}
