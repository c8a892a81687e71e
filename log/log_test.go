//
// Tencent is pleased to support the open source community by making trpc-agent-tracelog available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-tracelog is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.level)
		assert.Equal(t, tt.want, zapLevel.Level(), "Expected level for %q", tt.level)
	}
	SetLevel(LevelInfo)
}

func TestPackageHelpersDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Debug("debug message")
		Debugf("debug %s", "formatted")
		Info("info message")
		Infof("info %s", "formatted")
		Warn("warn message")
		Warnf("warn %s", "formatted")
		Error("error message")
		Errorf("error %s", "formatted")
	}, "Expected package-level helpers not to panic")
}
