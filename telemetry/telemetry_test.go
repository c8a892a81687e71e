//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultEndpoint verifies precedence of the OTLP endpoint environment
// variables.
func TestDefaultEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "custom-trace:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "generic:4317")
	assert.Equal(t, "custom-trace:4317", defaultEndpoint(),
		"Expected the traces-specific variable to win")

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	assert.Equal(t, "generic:4317", defaultEndpoint(),
		"Expected fallback to the generic variable")

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	assert.Equal(t, "localhost:4317", defaultEndpoint(),
		"Expected the built-in default")
}

func TestOptions(t *testing.T) {
	o := &options{}
	for _, opt := range []Option{
		WithEndpoint("collector:4317"),
		WithServiceName("svc"),
		WithServiceVersion("v9"),
	} {
		opt(o)
	}
	assert.Equal(t, "collector:4317", o.endpoint)
	assert.Equal(t, "svc", o.serviceName)
	assert.Equal(t, "v9", o.serviceVersion)
}

func TestGlobalsStartAsNoops(t *testing.T) {
	assert.NotNil(t, Tracer, "Expected a usable no-op tracer before Start")
	assert.NotNil(t, Meter, "Expected a usable no-op meter before Start")
}
