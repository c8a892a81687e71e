//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

// Command tracelog rebuilds execution logs from recorded trace events
// and topology files, or serves the rebuild API over HTTP.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
