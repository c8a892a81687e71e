//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Package textparse extracts structured data from free-text log fields on a
// best-effort basis. Legacy producers embed JSON or Python-repr dicts inside
// plain strings; extraction either succeeds or falls back to the raw text,
// never through error-based control flow.
package textparse

import (
	"encoding/json"
	"strings"
)

// Result is the tagged outcome of an extraction attempt. When Parsed is
// false, Raw carries the input unmodified and Value is nil.
type Result struct {
	// Value is the decoded payload when Parsed is true.
	Value any
	// Raw is the original input text.
	Raw string
	// Parsed reports whether decoding succeeded.
	Parsed bool
}

// Extract attempts to decode text as JSON, then as a Python-repr dict/list
// rewritten to JSON. Text that decodes to neither is returned as a fallback
// result carrying the raw input.
func Extract(text string) Result {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return Result{Raw: text}
	}
	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		return Result{Value: value, Raw: text, Parsed: true}
	}
	if err := json.Unmarshal([]byte(pythonToJSON(trimmed)), &value); err == nil {
		return Result{Value: value, Raw: text, Parsed: true}
	}
	return Result{Raw: text}
}

// pythonToJSON rewrites the Python literal syntax that differs from JSON:
// single-quoted strings, True/False/None. The rewrite is textual and
// deliberately simple; anything it mangles just fails the second decode and
// falls back.
func pythonToJSON(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inDouble := false
	inSingle := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text) && (inDouble || inSingle):
			b.WriteByte(c)
			i++
			b.WriteByte(text[i])
		case c == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteByte(c)
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteByte('"')
		case !inDouble && !inSingle:
			if rest := text[i:]; strings.HasPrefix(rest, "True") {
				b.WriteString("true")
				i += 3
			} else if strings.HasPrefix(rest, "False") {
				b.WriteString("false")
				i += 4
			} else if strings.HasPrefix(rest, "None") {
				b.WriteString("null")
				i += 3
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Pretty renders a decoded payload as indented JSON. Values that fail to
// encode render via best-effort stringification of the zero case, an empty
// object.
func Pretty(value any) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
