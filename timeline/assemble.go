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
	"fmt"
	"strings"

	"trpc.group/trpc-go/trpc-agent-tracelog/event"
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

// Merge look-back windows, in stream positions. A repeat event for the same
// node and turn farther back than the window starts a new entry instead of
// updating the existing one.
const (
	generatorMergeWindow = 10
	conditionMergeWindow = 5
)

// Assembler reconstructs log timelines against one graph snapshot. The
// graph-derived structures (identity index, execution order) are computed
// once at construction; every Build call re-derives all event-derived state
// from scratch, so a single Assembler is safe to reuse across renders of the
// same graph.
type Assembler struct {
	idx            *graph.Index
	order          map[string]int
	knowledgeNames map[string]string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithKnowledgeNames supplies display names for knowledge bases keyed by
// node id. Entries override whatever the event payload or node configuration
// carries.
func WithKnowledgeNames(names map[string]string) Option {
	return func(a *Assembler) { a.knowledgeNames = names }
}

// New creates an Assembler for one graph snapshot.
func New(g *graph.Graph, opts ...Option) *Assembler {
	a := &Assembler{
		idx:            graph.NewIndex(g),
		order:          graph.ComputeOrder(g),
		knowledgeNames: map[string]string{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// run is the event-derived state of a single Build pass. The dedup ledgers
// live here, owned by the pass, never in package state.
type run struct {
	entries      []*Entry
	byKey        map[string]*Entry
	placeholders map[string]*Entry
	userEmitted  map[int]bool
	firstSeen    map[string]int
}

func newRun() *run {
	return &run{
		byKey:        make(map[string]*Entry),
		placeholders: make(map[string]*Entry),
		userEmitted:  make(map[int]bool),
		firstSeen:    make(map[string]int),
	}
}

// Build assembles the ordered log for one trace-event snapshot. It returns
// the sorted entries and the total-time display string, which is the last
// entry's time. The pass is deterministic: the same events and graph produce
// identical output on every call.
func (a *Assembler) Build(events []*event.Event) ([]*Entry, string) {
	events = event.Normalize(events)
	r := newRun()
	for _, ev := range events {
		if ev == nil {
			continue
		}
		a.process(r, ev)
	}
	a.applyFinalAnswer(r, events)
	sortEntries(r.entries, a.idx, a.order)
	totalTime := ""
	if len(r.entries) > 0 {
		totalTime = r.entries[len(r.entries)-1].Time
	}
	return r.entries, totalTime
}

// process classifies one event and routes it to the matching emit path.
// Predicates run in priority order; the first hit wins.
func (a *Assembler) process(r *run, ev *event.Event) {
	node := a.idx.Resolve(ev.NodeID)
	kind := graph.ParseKind(ev.NodeType)
	if kind == graph.KindUnknown {
		kind = node.Kind()
	}

	if input, ok := ev.UserInput(); ok && !r.userEmitted[ev.Turn] {
		r.userEmitted[ev.Turn] = true
		e := a.newEntry(r, ev, node, graph.KindUser, input)
		r.entries = append(r.entries, e)
		return
	}

	if ev.IsBareChainStart() {
		// Condition nodes only ever log their resolved branch.
		if kind == graph.KindCondition {
			return
		}
		a.emitPlaceholder(r, ev, node, kind)
		return
	}

	hasSignal := ev.HasUpdates() || ev.HasToolResult() || ev.IsChainSignal() ||
		ev.LLMContent() != "" || ev.HasProgress()
	if !hasSignal {
		return
	}
	// A user-input signal already satisfied the input slot for this turn.
	if kind == graph.KindInput && r.userEmitted[ev.Turn] {
		return
	}
	f := a.format(kind, ev, node)
	if f.text == "" {
		return
	}
	a.emit(r, ev, node, kind, f)
}

// emitPlaceholder appends a bare "execution started" entry for a lifecycle
// marker, unless one already exists for the node and turn.
func (a *Assembler) emitPlaceholder(r *run, ev *event.Event, node *graph.Node, kind graph.Kind) {
	pkey := placeholderKey(node.ID, ev.Turn)
	if _, exists := r.placeholders[pkey]; exists {
		return
	}
	text := fmt.Sprintf("[%s] %s\nexecution started", kind, node.DisplayName())
	e := a.newEntry(r, ev, node, kind, text)
	e.placeholder = true
	r.placeholders[pkey] = e
	r.entries = append(r.entries, e)
}

// emit appends or merges one formatted result. One-shot kinds key on the
// event index and always append; incremental kinds converge to one entry per
// node, turn, and category, bounded by the kind's merge window.
func (a *Assembler) emit(r *run, ev *event.Event, node *graph.Node, kind graph.Kind, f formatted) {
	// The first real result for a node and turn replaces its start
	// placeholder in place, keeping the placeholder's position.
	pkey := placeholderKey(node.ID, ev.Turn)
	if p, ok := r.placeholders[pkey]; ok && p.placeholder {
		p.placeholder = false
		p.Type = kind
		p.Log = f.text
		p.lastIndex = ev.Index
		if kind == graph.KindGenerator {
			p.head, p.content = splitResponse(f.text)
		}
		if !f.oneShot {
			r.byKey[mergeKey(kind, node.ID, ev.Turn)] = p
		}
		return
	}

	if f.oneShot {
		// Keyed on the event index: repeats append instead of merging.
		e := a.newEntry(r, ev, node, kind, f.text)
		r.entries = append(r.entries, e)
		return
	}

	key := mergeKey(kind, node.ID, ev.Turn)
	if existing, ok := r.byKey[key]; ok && a.merge(existing, kind, ev, f) {
		return
	}
	// Either the first entry for this key, or a repeat outside the merge
	// window; the fresh entry takes over the key so later deltas follow it.
	e := a.newEntry(r, ev, node, kind, f.text)
	if kind == graph.KindGenerator {
		e.head, e.content = splitResponse(f.text)
	}
	r.byKey[key] = e
	r.entries = append(r.entries, e)
}

// merge folds an incremental event into its existing entry. It reports false
// when the event falls outside the kind's merge window, in which case the
// caller starts a fresh entry.
func (a *Assembler) merge(e *Entry, kind graph.Kind, ev *event.Event, f formatted) bool {
	switch kind {
	case graph.KindGenerator:
		if distance(ev.Index, e.lastIndex) > generatorMergeWindow {
			return false
		}
		head, content := splitResponse(f.text)
		if len(head) > len(e.head) {
			e.head = head
		}
		// Replace the response section whenever the content grew or simply
		// changed; tolerates both streaming growth and out-of-order
		// replacement.
		if content != "" && content != e.content {
			e.content = content
		}
		e.Log = withResponse(e.head, e.content)
		e.lastIndex = ev.Index
		return true
	case graph.KindCondition:
		if distance(ev.Index, e.lastIndex) > conditionMergeWindow {
			return false
		}
		e.Log = f.text
		e.lastIndex = ev.Index
		return true
	default:
		// Input, reviewer, coder: converge to the latest rendering.
		e.Log = f.text
		e.lastIndex = ev.Index
		return true
	}
}

// newEntry builds an entry carrying the resolved node's position and
// execution order. When the graph supplies no order, the node's
// first-appearance event index substitutes.
func (a *Assembler) newEntry(r *run, ev *event.Event, node *graph.Node, kind graph.Kind, text string) *Entry {
	if _, seen := r.firstSeen[node.ID]; !seen {
		r.firstSeen[node.ID] = ev.Index
	}
	execOrder, ok := a.order[node.ID]
	if !ok {
		execOrder = r.firstSeen[node.ID]
	}
	return &Entry{
		Time:           formatTime(ev.Timestamp),
		Log:            text,
		Type:           kind,
		Index:          float64(ev.Index),
		NodeID:         node.ID,
		NodeX:          node.X,
		NodeY:          node.Y,
		ExecutionOrder: execOrder,
		Turn:           ev.Turn,
		lastIndex:      ev.Index,
	}
}

func mergeKey(kind graph.Kind, nodeID string, turn int) string {
	return fmt.Sprintf("%s_%s_%d", kind, nodeID, turn)
}

func placeholderKey(nodeID string, turn int) string {
	return fmt.Sprintf("%s_%d", nodeID, turn)
}

// splitResponse separates a generator block into its header lines and the
// trailing response section.
func splitResponse(text string) (head, content string) {
	const marker = "\nresponse:\n"
	if i := strings.Index(text, marker); i >= 0 {
		return text[:i], text[i+len(marker):]
	}
	return text, ""
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
