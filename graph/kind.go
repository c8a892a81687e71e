//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package graph

import "strings"

// Kind is the functional category of a graph node or log entry. It is a
// closed enumeration: dispatch over kinds is an exhaustive switch, so adding
// a category is a compile-time-checked extension point.
type Kind string

// Node and entry categories. KindUser and KindFinalResult never appear on
// graph nodes; they tag the synthesized user-input and final-answer log
// entries and participate in sorting.
const (
	KindUser        Kind = "user"
	KindInput       Kind = "input"
	KindRewriter    Kind = "rewriter"
	KindRetriever   Kind = "retriever"
	KindCategorizer Kind = "categorizer"
	KindCondition   Kind = "condition"
	KindGenerator   Kind = "generator"
	KindReviewer    Kind = "reviewer"
	KindCoder       Kind = "coder"
	KindTool        Kind = "tool"
	KindAgentApp    Kind = "agent_app"
	KindUnion       Kind = "union"
	KindMerger      Kind = "merger"
	KindReranker    Kind = "reranker"
	KindCompressor  Kind = "compressor"
	KindFilter      Kind = "filter"
	KindOutput      Kind = "output"
	KindFinalResult Kind = "final_result"
	KindUnknown     Kind = "unknown"
)

// Retriever subtype tags. The graph editor emits retriever nodes with these
// synthetic type tags; the same strings also prefix raw event node ids.
const (
	TypeRetrieverKnowledge  = "retriever__knowledge"
	TypeRetrieverHyDE       = "retriever__rewriter_hyde"
	TypeRetrieverMultiQuery = "retriever__rewriter_multiquery"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Priority returns the kind's fixed sort priority, the last tie-breaker of
// the timeline sort stage. Unknown kinds sort after everything.
func (k Kind) Priority() float64 {
	switch k {
	case KindUser:
		return 1
	case KindInput:
		return 2
	case KindRewriter:
		return 2.5
	case KindRetriever:
		return 3
	case KindCategorizer:
		return 3.2
	case KindCondition:
		return 3.5
	case KindGenerator:
		return 4
	case KindReviewer:
		return 4.2
	case KindCoder:
		return 4.5
	case KindTool:
		return 4.7
	case KindAgentApp:
		return 4.8
	case KindUnion:
		return 5
	case KindMerger:
		return 5.2
	case KindReranker:
		return 5.5
	case KindCompressor:
		return 5.7
	case KindFilter:
		return 5.8
	case KindOutput:
		return 6
	case KindFinalResult:
		return 7
	default:
		return 99
	}
}

// ParseKind maps a raw node type tag to its category. Subtyped tags use a
// double-underscore separator ("input__basic", "output__chat",
// "retriever__rewriter_hyde"); the family before the separator decides the
// category, except rewriter-flavored retriever tags, which classify as
// rewriters.
func ParseKind(nodeType string) Kind {
	if nodeType == "" {
		return KindUnknown
	}
	switch nodeType {
	case TypeRetrieverHyDE, TypeRetrieverMultiQuery:
		return KindRewriter
	}
	family := nodeType
	if i := strings.Index(nodeType, "__"); i >= 0 {
		family = nodeType[:i]
	}
	switch Kind(family) {
	case KindUser, KindInput, KindRewriter, KindRetriever, KindCategorizer,
		KindCondition, KindGenerator, KindReviewer, KindCoder, KindTool,
		KindAgentApp, KindUnion, KindMerger, KindReranker, KindCompressor,
		KindFilter, KindOutput, KindFinalResult:
		return Kind(family)
	}
	return KindUnknown
}
