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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-tracelog/event"
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
)

func TestFormatGeneratorFields(t *testing.T) {
	a := New(nil)
	node := &graph.Node{
		ID: "gen1", Name: "Answerer", Type: "generator",
		Data: map[string]any{
			"prompt_id":      "p-42",
			"few_shot_id":    "fs-7",
			"serving_name":   "production-llm",
			"serving_model":  "a1b2c3d4-0000-1111-2222-333344445555",
			"tools":          []any{"search", "calc"},
			"mcp_tools":      []any{"fetch"},
			"knowledge_name": "product-docs",
		},
	}
	ev := event.New("gen1", "generator",
		event.WithUpdates(map[string]any{"content": "generated text"}))
	f := a.format(graph.KindGenerator, ev, node)
	assert.False(t, f.oneShot, "Expected generator entries to merge")
	assert.Contains(t, f.text, "[generator] Answerer")
	assert.Contains(t, f.text, "prompt: p-42")
	assert.Contains(t, f.text, "few-shot: fs-7")
	assert.Contains(t, f.text, "model: production-llm", "Expected readable name over UUID")
	assert.Contains(t, f.text, "tools: 2")
	assert.Contains(t, f.text, "mcp tools: 1")
	assert.Contains(t, f.text, "knowledge: product-docs")
	assert.True(t, strings.HasSuffix(f.text, "response:\ngenerated text"))
}

func TestFormatGeneratorDeletedKnowledge(t *testing.T) {
	a := New(nil)
	node := &graph.Node{
		ID: "gen1", Type: "generator",
		Data: map[string]any{"knowledge_name": "__deleted__"},
	}
	ev := event.New("gen1", "generator",
		event.WithUpdates(map[string]any{"content": "x"}))
	f := a.format(graph.KindGenerator, ev, node)
	assert.NotContains(t, f.text, "knowledge:",
		"Expected the deleted sentinel to render as no knowledge")
}

func TestServingModelUUIDFallback(t *testing.T) {
	node := &graph.Node{ID: "n", Data: map[string]any{
		"serving_name": "11111111-2222-3333-4444-555555555555",
	}}
	ev := event.New("n", "generator")
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", servingModel(ev, node),
		"Expected the UUID when nothing readable exists")

	node.Data["serving_model"] = "readable-model"
	assert.Equal(t, "readable-model", servingModel(ev, node),
		"Expected any readable identifier over a UUID")
}

func TestFormatRetriever(t *testing.T) {
	a := New(nil)
	node := &graph.Node{ID: "ret1", Type: "retriever__knowledge",
		Data: map[string]any{"knowledge_name": "kb-main"}}
	ev := event.New("ret1", "retriever__knowledge",
		event.WithUpdates(map[string]any{
			"query":     "how to deploy",
			"documents": []any{"d1", "d2", "d3"},
			"content":   strings.Repeat("x", 300),
		}))
	f := a.format(graph.KindRetriever, ev, node)
	assert.True(t, f.oneShot, "Expected retriever entries one-shot")
	assert.Contains(t, f.text, "knowledge: kb-main")
	assert.Contains(t, f.text, "query: how to deploy")
	assert.Contains(t, f.text, "documents: 3")
	assert.Contains(t, f.text, "...", "Expected truncated preview marker")
	assert.NotContains(t, f.text, strings.Repeat("x", 201), "Expected preview capped")
}

func TestFormatRewriterMultiQueryCapsList(t *testing.T) {
	node := &graph.Node{ID: "rw1", Type: graph.TypeRetrieverMultiQuery}
	queries := []any{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}
	ev := event.New("rw1", graph.TypeRetrieverMultiQuery,
		event.WithUpdates(map[string]any{"query": "original", "queries": queries}))
	f := formatRewriter(ev, node)
	assert.Contains(t, f.text, "q5")
	assert.NotContains(t, f.text, "q6", "Expected the list capped at five")
	assert.Contains(t, f.text, "(+2 more)")
}

func TestFormatRewriterHyde(t *testing.T) {
	node := &graph.Node{ID: "rw1", Type: graph.TypeRetrieverHyDE,
		Data: map[string]any{"prompt": "hypothesize", "serving_name": "rewrite-llm"}}
	ev := event.New("rw1", graph.TypeRetrieverHyDE,
		event.WithUpdates(map[string]any{
			"query": "original", "rewritten_query": "hypothetical document",
		}))
	f := formatRewriter(ev, node)
	assert.Contains(t, f.text, "model: rewrite-llm")
	assert.Contains(t, f.text, "prompt: hypothesize")
	assert.Contains(t, f.text, "query: original")
	assert.Contains(t, f.text, "rewritten: hypothetical document")
}

func TestFormatConditionSelectedKeyFallback(t *testing.T) {
	node := &graph.Node{ID: "cond1", Type: "condition",
		Data: map[string]any{"expressions": []any{"a > 1", "b > 2"}}}
	ev := event.New("cond1", "condition",
		event.WithUpdates(map[string]any{
			"selected_branch_a": "a > 1",
			"selected_branch_b": "b > 2",
		}))
	f := formatCondition(ev, node)
	assert.Contains(t, f.text, "selected: b > 2",
		"Expected the lexicographically last selected_* key")
}

func TestFormatCategorizer(t *testing.T) {
	node := &graph.Node{ID: "cat1", Type: "categorizer",
		Data: map[string]any{"prompt_id": "p-9", "serving_name": "cat-llm"}}
	ev := event.New("cat1", "categorizer",
		event.WithUpdates(map[string]any{"category": "billing"}))
	f := formatCategorizer(ev, node)
	assert.Contains(t, f.text, "category: billing")
	assert.Contains(t, f.text, "prompt: p-9")
	assert.Contains(t, f.text, "model: cat-llm")
}

func TestFormatMergerAndUnion(t *testing.T) {
	node := &graph.Node{ID: "m1", Type: "merger",
		Data: map[string]any{"format": "{a}\n{b}"}}
	ev := event.New("m1", "merger",
		event.WithUpdates(map[string]any{"content": "merged body"}))
	f := formatMerge(graph.KindMerger, ev, node)
	assert.Contains(t, f.text, "[merger]")
	assert.Contains(t, f.text, "format: {a}\n{b}")
	assert.Contains(t, f.text, "content: merged body")
}

func TestFormatCoder(t *testing.T) {
	node := &graph.Node{ID: "c1", Type: "coder",
		Data: map[string]any{"code_function": "def run(x): return x * 2"}}
	ev := event.New("c1", "coder",
		event.WithToolResult(map[string]any{"result": "4"}))
	f := formatCoder(ev, node)
	assert.Contains(t, f.text, "code: def run(x): return x * 2")
	assert.Contains(t, f.text, "result: 4")
}

func TestFormatToolAndAgentApp(t *testing.T) {
	tool := &graph.Node{ID: "t1", Type: "tool", Data: map[string]any{"tool_name": "web_search"}}
	ev := event.New("t1", "tool",
		event.WithToolResult(map[string]any{"result": "10 hits"}))
	f := formatTool(graph.KindTool, ev, tool)
	assert.Contains(t, f.text, "tool: web_search")
	assert.Contains(t, f.text, "result: 10 hits")

	app := &graph.Node{ID: "a1", Type: "agent_app", Data: map[string]any{"app_name": "scheduler"}}
	ev = event.New("a1", "agent_app",
		event.WithUpdates(map[string]any{"result": "booked"}))
	f = formatTool(graph.KindAgentApp, ev, app)
	assert.Contains(t, f.text, "app: scheduler")
	assert.Contains(t, f.text, "result: booked")
}

func TestFormatDocCountKinds(t *testing.T) {
	for _, kind := range []graph.Kind{graph.KindReranker, graph.KindCompressor, graph.KindFilter} {
		node := &graph.Node{ID: "n1", Type: kind.String()}
		ev := event.New("n1", kind.String(),
			event.WithUpdates(map[string]any{"document_count": float64(7)}))
		f := formatDocCount(kind, ev, node)
		assert.Contains(t, f.text, "documents: 7", "Expected only the document count for %s", kind)
		lines := strings.Split(f.text, "\n")
		assert.Len(t, lines, 2, "Expected header plus count only for %s", kind)
	}
}

func TestFormatOutputOnlyFormatString(t *testing.T) {
	node := &graph.Node{ID: "out1", Type: "output__chat",
		Data: map[string]any{"format": "markdown"}}
	ev := event.New("out1", "output__chat",
		event.WithUpdates(map[string]any{"content": "never shown here"}))
	f := formatOutput(ev, node)
	assert.Contains(t, f.text, "format: markdown")
	assert.NotContains(t, f.text, "never shown here",
		"Expected content left to the final answer resolver")
}

func TestFormatInputExpandsEmbeddedLiterals(t *testing.T) {
	node := &graph.Node{ID: "input1", Type: "input__basic"}
	ev := event.New("input1", "input__basic",
		event.WithUpdates(map[string]any{
			"payload": "{'query': 'refund', 'ok': True}",
			"channel": "web",
		}))
	f := formatInput(ev, node)
	assert.Contains(t, f.text, `"query": "refund"`,
		"Expected the embedded Python-repr payload decoded into structure")
	assert.Contains(t, f.text, `"ok": true`)
	assert.NotContains(t, f.text, "'query'",
		"Expected no raw Python literal left in the rendered block")
	assert.Contains(t, f.text, `"channel": "web"`, "Expected plain values untouched")
}

func TestExpandEmbedded(t *testing.T) {
	updates := map[string]any{
		"json":   `{"a": 1}`,
		"python": "['x', None]",
		"plain":  "not structured",
	}
	got := expandEmbedded(updates)
	assert.Equal(t, map[string]any{"a": float64(1)}, got["json"])
	assert.Equal(t, []any{"x", nil}, got["python"])
	assert.Equal(t, "not structured", got["plain"],
		"Expected unparseable strings to stay raw")

	same := map[string]any{"plain": "text", "count": 3}
	assert.Equal(t, same, expandEmbedded(same), "Expected untouched payloads returned as-is")
}

func TestTruncate(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, truncate(short), "Expected short text untouched")

	long := strings.Repeat("ab", 150)
	got := truncate(long)
	assert.True(t, strings.HasSuffix(got, "..."), "Expected ellipsis marker")
	assert.Len(t, []rune(got), previewLimit+3)

	wide := strings.Repeat("測", 250)
	got = truncate(wide)
	require.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, []rune(got), previewLimit+3, "Expected rune-safe truncation")
}

func TestDocCount(t *testing.T) {
	assert.Equal(t, 2, docCount(map[string]any{"documents": []any{"a", "b"}}))
	assert.Equal(t, 9, docCount(map[string]any{"document_count": float64(9)}))
	assert.Equal(t, 3, docCount(map[string]any{"document_count": "3"}))
	assert.Equal(t, -1, docCount(map[string]any{}), "Expected -1 when no count present")
}
