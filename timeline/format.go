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
	"regexp"
	"sort"
	"strconv"
	"strings"

	"trpc.group/trpc-go/trpc-agent-tracelog/event"
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
	"trpc.group/trpc-go/trpc-agent-tracelog/internal/textparse"
)

const (
	// previewLimit is the rune budget for content previews.
	previewLimit = 200
	// maxListedQueries caps how many rewritten queries a rewriter block
	// lists before collapsing the rest into a "+N more" suffix.
	maxListedQueries = 5
	// knowledgeDeleted is the sentinel a deleted knowledge base leaves
	// behind in node configuration; it renders as no knowledge at all.
	knowledgeDeleted = "__deleted__"
)

var uuidShape = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// formatted is one formatter's output. oneShot entries key their dedup key on
// the event index, so repeats append instead of merging.
type formatted struct {
	text    string
	oneShot bool
}

// format renders the event through the formatter for the node's kind.
// The switch over kinds is exhaustive on purpose: adding a node category
// must extend it, or the new kind falls to the generic block.
func (a *Assembler) format(kind graph.Kind, ev *event.Event, node *graph.Node) formatted {
	switch kind {
	case graph.KindGenerator:
		return a.formatGenerator(ev, node)
	case graph.KindRetriever:
		return a.formatRetriever(ev, node)
	case graph.KindRewriter:
		return formatRewriter(ev, node)
	case graph.KindCondition:
		return formatCondition(ev, node)
	case graph.KindCategorizer:
		return formatCategorizer(ev, node)
	case graph.KindUnion, graph.KindMerger:
		return formatMerge(kind, ev, node)
	case graph.KindCoder:
		return formatCoder(ev, node)
	case graph.KindTool, graph.KindAgentApp:
		return formatTool(kind, ev, node)
	case graph.KindReranker, graph.KindCompressor, graph.KindFilter:
		return formatDocCount(kind, ev, node)
	case graph.KindOutput:
		return formatOutput(ev, node)
	case graph.KindInput:
		return formatInput(ev, node)
	case graph.KindReviewer:
		return formatReviewer(ev, node)
	case graph.KindUser, graph.KindFinalResult, graph.KindUnknown:
		return formatGeneric(kind, ev, node)
	default:
		return formatGeneric(kind, ev, node)
	}
}

// block accumulates "label: value" lines, skipping empty values so partial
// payloads degrade to shorter blocks instead of failing.
type block struct {
	lines []string
}

func newBlock(kind graph.Kind, node *graph.Node) *block {
	return &block{lines: []string{fmt.Sprintf("[%s] %s", kind, node.DisplayName())}}
}

func (b *block) add(label, value string) {
	if value != "" {
		b.lines = append(b.lines, label+": "+value)
	}
}

func (b *block) addRaw(line string) {
	if line != "" {
		b.lines = append(b.lines, line)
	}
}

func (b *block) String() string {
	return strings.Join(b.lines, "\n")
}

func (a *Assembler) formatGenerator(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindGenerator, node)
	b.add("prompt", field(ev, node, "prompt_id"))
	b.add("few-shot", field(ev, node, "few_shot_id"))
	b.add("model", servingModel(ev, node))
	if n := countItems(node.Data["tools"]); n > 0 {
		b.add("tools", strconv.Itoa(n))
	}
	if n := countItems(node.Data["mcp_tools"]); n > 0 {
		b.add("mcp tools", strconv.Itoa(n))
	}
	b.add("knowledge", a.knowledgeName(ev, node))
	b.add("progress", strings.TrimSpace(ev.Progress))
	head := b.String()
	content := generatorContent(ev)
	return formatted{text: withResponse(head, content)}
}

// generatorContent is the streaming generation text of one event.
func generatorContent(ev *event.Event) string {
	if c := event.String(ev.Updates, "content"); c != "" {
		return c
	}
	return ev.LLMContent()
}

// withResponse appends the trailing response section replaced on merges.
func withResponse(head, content string) string {
	if content == "" {
		return head
	}
	return head + "\nresponse:\n" + content
}

func (a *Assembler) formatRetriever(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindRetriever, node)
	b.add("knowledge", a.knowledgeName(ev, node))
	b.add("query", event.String(ev.Updates, "query"))
	if n := docCount(ev.Updates); n >= 0 {
		b.add("documents", strconv.Itoa(n))
	}
	b.add("preview", truncate(event.String(ev.Updates, "content")))
	b.add("progress", strings.TrimSpace(ev.Progress))
	return formatted{text: b.String(), oneShot: true}
}

func formatRewriter(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindRewriter, node)
	b.add("model", servingModel(ev, node))
	b.add("prompt", truncate(event.String(node.Data, "prompt")))
	b.add("query", event.String(ev.Updates, "query"))
	tag := node.Type
	if tag == "" {
		tag = ev.NodeType
	}
	if tag == graph.TypeRetrieverMultiQuery {
		b.addRaw(rewrittenQueries(ev.Updates))
	} else {
		b.add("rewritten", event.String(ev.Updates, "rewritten_query"))
	}
	b.add("progress", strings.TrimSpace(ev.Progress))
	return formatted{text: b.String(), oneShot: true}
}

// rewrittenQueries lists the first maxListedQueries rewritten queries with a
// "+N more" suffix for the rest.
func rewrittenQueries(updates map[string]any) string {
	list, ok := updates["queries"].([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	var shown []string
	for i, q := range list {
		if i == maxListedQueries {
			break
		}
		if s, ok := q.(string); ok && s != "" {
			shown = append(shown, s)
		}
	}
	if len(shown) == 0 {
		return ""
	}
	out := "queries: " + strings.Join(shown, "; ")
	if extra := len(list) - maxListedQueries; extra > 0 {
		out += fmt.Sprintf(" (+%d more)", extra)
	}
	return out
}

func formatCondition(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindCondition, node)
	if exprs, ok := node.Data["expressions"].([]any); ok {
		for _, e := range exprs {
			if s, ok := e.(string); ok && s != "" {
				b.addRaw("branch: " + s)
			}
		}
	}
	b.add("selected", selectedBranch(ev.Updates))
	return formatted{text: b.String()}
}

// selectedBranch reads the resolved branch from the explicit selected field,
// falling back to selected_* keys. Map iteration order is not observable, so
// the fallback takes the lexicographically last selected_* key to stay
// deterministic.
func selectedBranch(updates map[string]any) string {
	if s := event.String(updates, "selected"); s != "" {
		return s
	}
	var keys []string
	for k := range updates {
		if strings.HasPrefix(k, "selected_") {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	last := keys[len(keys)-1]
	if v := event.String(updates, last); v != "" {
		return v
	}
	return strings.TrimPrefix(last, "selected_")
}

func formatCategorizer(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindCategorizer, node)
	b.add("prompt", field(ev, node, "prompt_id"))
	b.add("model", servingModel(ev, node))
	b.add("category", event.String(ev.Updates, "category"))
	return formatted{text: b.String(), oneShot: true}
}

func formatMerge(kind graph.Kind, ev *event.Event, node *graph.Node) formatted {
	b := newBlock(kind, node)
	b.add("format", event.String(node.Data, "format"))
	b.add("content", truncate(event.String(ev.Updates, "content")))
	return formatted{text: b.String(), oneShot: true}
}

func formatCoder(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindCoder, node)
	b.add("code", truncate(field(ev, node, "code_function")))
	result := event.String(ev.Updates, "result")
	if result == "" {
		result = event.String(ev.ToolResult, "result")
	}
	b.add("result", truncate(result))
	b.add("progress", strings.TrimSpace(ev.Progress))
	return formatted{text: b.String()}
}

func formatTool(kind graph.Kind, ev *event.Event, node *graph.Node) formatted {
	b := newBlock(kind, node)
	if kind == graph.KindAgentApp {
		b.add("app", field(ev, node, "app_name"))
	} else {
		b.add("tool", field(ev, node, "tool_name"))
	}
	result := event.String(ev.ToolResult, "result")
	if result == "" {
		result = event.String(ev.Updates, "result")
	}
	b.add("result", truncate(result))
	b.add("progress", strings.TrimSpace(ev.Progress))
	return formatted{text: b.String(), oneShot: true}
}

func formatDocCount(kind graph.Kind, ev *event.Event, node *graph.Node) formatted {
	b := newBlock(kind, node)
	if n := docCount(ev.Updates); n >= 0 {
		b.add("documents", strconv.Itoa(n))
	}
	return formatted{text: b.String(), oneShot: true}
}

func formatOutput(ev *event.Event, node *graph.Node) formatted {
	// Output content itself belongs to the final answer resolver; this block
	// only surfaces the configured format string.
	b := newBlock(graph.KindOutput, node)
	b.add("format", event.String(node.Data, "format"))
	return formatted{text: b.String(), oneShot: true}
}

func formatInput(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindInput, node)
	if len(ev.Updates) > 0 {
		b.addRaw(textparse.Pretty(expandEmbedded(ev.Updates)))
	}
	return formatted{text: b.String()}
}

func formatReviewer(ev *event.Event, node *graph.Node) formatted {
	b := newBlock(graph.KindReviewer, node)
	b.add("model", servingModel(ev, node))
	review := event.String(ev.Updates, "review")
	if review == "" {
		review = event.String(ev.Updates, "content")
	}
	b.add("review", truncate(review))
	return formatted{text: b.String()}
}

// formatGeneric renders events from unrecognized node kinds: progress or
// streaming text when present, otherwise the raw update payload.
func formatGeneric(kind graph.Kind, ev *event.Event, node *graph.Node) formatted {
	b := newBlock(kind, node)
	b.add("progress", strings.TrimSpace(ev.Progress))
	b.add("content", truncate(ev.LLMContent()))
	if len(b.lines) == 1 && len(ev.Updates) > 0 {
		b.addRaw(textparse.Pretty(expandEmbedded(ev.Updates)))
	}
	return formatted{text: b.String(), oneShot: true}
}

// expandEmbedded decodes string-shaped payload values that carry embedded
// JSON or Python-repr literals, so the pretty printer shows their structure
// instead of one escaped string. Values that fail extraction stay raw.
func expandEmbedded(updates map[string]any) map[string]any {
	expanded := make(map[string]any, len(updates))
	changed := false
	for k, v := range updates {
		if s, ok := v.(string); ok {
			if r := textparse.Extract(s); r.Parsed {
				expanded[k] = r.Value
				changed = true
				continue
			}
		}
		expanded[k] = v
	}
	if !changed {
		return updates
	}
	return expanded
}

// field reads a key from the event payload first and the node configuration
// second.
func field(ev *event.Event, node *graph.Node, key string) string {
	if v := event.String(ev.Updates, key); v != "" {
		return v
	}
	return event.String(node.Data, key)
}

// servingModel picks the display name of the serving model, preferring a
// human-readable serving name over a raw UUID-looking identifier.
func servingModel(ev *event.Event, node *graph.Node) string {
	name := field(ev, node, "serving_name")
	id := field(ev, node, "serving_model")
	switch {
	case name != "" && !uuidShape.MatchString(name):
		return name
	case id != "" && !uuidShape.MatchString(id):
		return id
	case name != "":
		return name
	default:
		return id
	}
}

// knowledgeName resolves the knowledge base display name through the
// prioritized fallback chain: explicit override map, event payload, node
// configuration. The deleted sentinel means no knowledge at all.
func (a *Assembler) knowledgeName(ev *event.Event, node *graph.Node) string {
	candidates := []string{
		a.knowledgeNames[node.ID],
		event.String(ev.Updates, "knowledge_name"),
		event.String(ev.Updates, "knowledge"),
		event.String(node.Data, "knowledge_name"),
		event.String(node.Data, "knowledge"),
	}
	for _, c := range candidates {
		if c == knowledgeDeleted {
			return ""
		}
		if c != "" {
			return c
		}
	}
	return ""
}

// countItems reports the length of a list-shaped configuration value.
func countItems(v any) int {
	switch list := v.(type) {
	case []any:
		return len(list)
	case []string:
		return len(list)
	default:
		return 0
	}
}

// docCount extracts a retrieved-document count from either a document list
// or an explicit numeric field. -1 means no count was present.
func docCount(updates map[string]any) int {
	if list, ok := updates["documents"].([]any); ok {
		return len(list)
	}
	switch v := updates["document_count"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return -1
}

// truncate caps a preview at previewLimit runes with an ellipsis marker.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + "..."
}
