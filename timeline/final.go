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
	"strings"

	"trpc.group/trpc-go/trpc-agent-tracelog/event"
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

// placeholderAnswer is the literal noise value some producers emit as a
// final result; it never counts as an answer.
const placeholderAnswer = "#"

// finalVetoLength is the maximum trimmed length at which an explicit
// terminal signal is treated as placeholder noise rather than an answer.
const finalVetoLength = 2

// finalAnswer is the resolved single best answer for the latest turn.
type finalAnswer struct {
	content string
	index   int
	nodeID  string
	turn    int
}

// resolveFinalAnswer determines the final answer for the most recent turn by
// comparing the explicit terminal signals against output-node content:
//  1. per turn group, keep the longest terminal content (ties prefer the
//     later event),
//  2. pick the highest turn group, with the untagged group sorting after
//     every numeric turn,
//  3. veto terminal content of trimmed length <= finalVetoLength,
//  4. fall back to output-node content, latest non-empty per group,
//  5. when both survive, the strictly longer content wins (ties keep the
//     terminal signal),
//  6. reject an empty or placeholder winner outright.
//
// It returns nil when no usable answer exists.
func resolveFinalAnswer(events []*event.Event) *finalAnswer {
	terminal := pickGroup(collectTerminal(events))
	if terminal != nil && len(strings.TrimSpace(terminal.content)) <= finalVetoLength {
		terminal = nil
	}
	output := pickGroup(collectOutput(events))

	winner := terminal
	if winner == nil || (output != nil && len(output.content) > len(winner.content)) {
		winner = output
	}
	if winner == nil {
		return nil
	}
	trimmed := strings.TrimSpace(winner.content)
	if trimmed == "" || trimmed == placeholderAnswer {
		return nil
	}
	return winner
}

// collectTerminal groups explicit terminal signals by turn, keeping the
// longest content per group and preferring the later event on equal length.
func collectTerminal(events []*event.Event) map[int]*finalAnswer {
	groups := make(map[int]*finalAnswer)
	for _, ev := range events {
		if ev == nil || ev.FinalResult == "" {
			continue
		}
		current := groups[ev.Turn]
		if current == nil || len(ev.FinalResult) >= len(current.content) {
			groups[ev.Turn] = &finalAnswer{
				content: ev.FinalResult,
				index:   ev.Index,
				nodeID:  ev.NodeID,
				turn:    ev.Turn,
			}
		}
	}
	return groups
}

// collectOutput groups output-node content by turn, keeping the latest
// non-empty content per group.
func collectOutput(events []*event.Event) map[int]*finalAnswer {
	groups := make(map[int]*finalAnswer)
	for _, ev := range events {
		if ev == nil || graph.ParseKind(ev.NodeType) != graph.KindOutput {
			continue
		}
		content := event.String(ev.Updates, "content")
		if content == "" {
			content = ev.LLMContent()
		}
		if content == "" {
			continue
		}
		groups[ev.Turn] = &finalAnswer{
			content: content,
			index:   ev.Index,
			nodeID:  ev.NodeID,
			turn:    ev.Turn,
		}
	}
	return groups
}

// pickGroup selects the highest-turn group. The untagged group (turn 0)
// represents the in-flight round and sorts after every numeric turn.
func pickGroup(groups map[int]*finalAnswer) *finalAnswer {
	if g, ok := groups[0]; ok {
		return g
	}
	best := -1
	for turn := range groups {
		if turn > best {
			best = turn
		}
	}
	if best < 0 {
		return nil
	}
	return groups[best]
}

// applyFinalAnswer appends the resolved final answer and removes the stale
// output entries it supersedes: those of the same turn, or every output
// entry when the answer is turn-less.
func (a *Assembler) applyFinalAnswer(r *run, events []*event.Event) {
	fa := resolveFinalAnswer(events)
	if fa == nil {
		return
	}
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.Type == graph.KindOutput && (fa.turn == 0 || e.Turn == fa.turn) {
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept

	entry := &Entry{
		Log:            fa.content,
		Type:           graph.KindFinalResult,
		Index:          float64(fa.index) + 0.5,
		NodeID:         fa.nodeID,
		ExecutionOrder: fa.index,
		Turn:           fa.turn,
	}
	if fa.index >= 0 && fa.index < len(events) && events[fa.index] != nil {
		entry.Time = formatTime(events[fa.index].Timestamp)
	}
	r.entries = append(r.entries, entry)
}
