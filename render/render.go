//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Package render exports a reconstructed timeline as markdown or HTML. The
// web portal renders entries as styled blocks; these exports are the
// file-friendly equivalent for sharing and archiving execution logs.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trpc.group/trpc-go/trpc-agent-tracelog/timeline"
)

var titleCaser = cases.Title(language.English)

// Markdown renders the sorted entries as a markdown document. Each entry
// becomes a section headed by its category and time, with the log text in a
// fenced block.
func Markdown(entries []*timeline.Entry, totalTime string) string {
	var b strings.Builder
	b.WriteString("# Execution Log\n")
	if totalTime != "" {
		fmt.Fprintf(&b, "\nTotal time: %s\n", totalTime)
	}
	for _, e := range entries {
		if e == nil || e.Log == "" {
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(heading(e))
		b.WriteString("\n\n```text\n")
		b.WriteString(e.Log)
		if !strings.HasSuffix(e.Log, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}

// HTML renders the entries through goldmark.
func HTML(entries []*timeline.Entry, totalTime string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(entries, totalTime)), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// heading builds a section heading like "Agent App (scheduler) - 10:42:01".
func heading(e *timeline.Entry) string {
	name := titleCaser.String(strings.ReplaceAll(e.Type.String(), "_", " "))
	if e.NodeID != "" {
		name += " (" + e.NodeID + ")"
	}
	if e.Time != "" {
		name += " - " + e.Time
	}
	return name
}
