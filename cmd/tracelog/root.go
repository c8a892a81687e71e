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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trpc.group/trpc-go/trpc-agent-tracelog/log"
)

func newRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRACELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:          "tracelog",
		Short:        "Rebuild human-readable execution logs from trace events",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			log.SetLevel(v.GetString("log-level"))
			return nil
		},
	}
	cmd.PersistentFlags().String("log-level", log.LevelInfo,
		"log level: debug, info, warn, error, fatal")

	cmd.AddCommand(newRebuildCommand(v))
	cmd.AddCommand(newServeCommand(v))
	return cmd
}
