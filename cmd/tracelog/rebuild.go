//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trpc.group/trpc-go/trpc-agent-tracelog/event"
	"trpc.group/trpc-go/trpc-agent-tracelog/graph"
	"trpc.group/trpc-go/trpc-agent-tracelog/render"
	"trpc.group/trpc-go/trpc-agent-tracelog/timeline"
)

func newRebuildCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild an execution log from event and graph JSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(cmd, v)
		},
	}
	cmd.Flags().String("events", "", "path to the trace events JSON file")
	cmd.Flags().String("graph", "", "path to the topology JSON file")
	cmd.Flags().String("knowledge", "", "path to an optional node->knowledge-base name map")
	cmd.Flags().String("format", "text", "output format: text, markdown, html, json")
	return cmd
}

func runRebuild(cmd *cobra.Command, v *viper.Viper) error {
	eventsPath := v.GetString("events")
	if eventsPath == "" {
		return fmt.Errorf("--events is required")
	}

	var events []*event.Event
	if err := readJSONFile(eventsPath, &events); err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	var g *graph.Graph
	if path := v.GetString("graph"); path != "" {
		g = &graph.Graph{}
		if err := readJSONFile(path, g); err != nil {
			return fmt.Errorf("read graph: %w", err)
		}
	}

	var opts []timeline.Option
	if path := v.GetString("knowledge"); path != "" {
		names := map[string]string{}
		if err := readJSONFile(path, &names); err != nil {
			return fmt.Errorf("read knowledge names: %w", err)
		}
		opts = append(opts, timeline.WithKnowledgeNames(names))
	}

	entries, totalTime := timeline.New(g, opts...).Build(events)
	out, err := formatEntries(v.GetString("format"), entries, totalTime)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func formatEntries(format string, entries []*timeline.Entry, totalTime string) (string, error) {
	switch format {
	case "text":
		return plainText(entries, totalTime), nil
	case "markdown":
		return render.Markdown(entries, totalTime), nil
	case "html":
		return render.HTML(entries, totalTime)
	case "json":
		data, err := json.MarshalIndent(map[string]any{
			"entries":   entries,
			"totalTime": totalTime,
		}, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func plainText(entries []*timeline.Entry, totalTime string) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[%s] %s\n\n", e.Time, e.Log)
	}
	if totalTime != "" {
		fmt.Fprintf(&b, "total time: %s", totalTime)
	}
	return b.String()
}

func readJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
