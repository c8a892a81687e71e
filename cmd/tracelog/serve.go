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
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trpc.group/trpc-go/trpc-agent-tracelog/log"
	"trpc.group/trpc-go/trpc-agent-tracelog/server/debug"
	"trpc.group/trpc-go/trpc-agent-tracelog/telemetry"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the log rebuild API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Int("pool-size", 0, "batch rebuild worker pool size (0 uses the default)")
	cmd.Flags().String("otlp-endpoint", "", "OTLP gRPC endpoint for traces and metrics")
	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	ctx := cmd.Context()
	if endpoint := v.GetString("otlp-endpoint"); endpoint != "" {
		clean, err := telemetry.Start(ctx, telemetry.WithEndpoint(endpoint))
		if err != nil {
			return err
		}
		defer func() {
			if err := clean(); err != nil {
				log.Errorf("telemetry shutdown: %v", err)
			}
		}()
	}

	var opts []debug.Option
	if size := v.GetInt("pool-size"); size > 0 {
		opts = append(opts, debug.WithPoolSize(size))
	}
	s, err := debug.New(opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := v.GetString("addr")
	log.Infof("tracelog server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}
