// Copyright 2025 The SatQuest Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/satquest/satquest/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

type contextKey string

const cfgKey contextKey = "cfg"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "satquest",
		Short:   "Bitcoin bounties for GitHub issues",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if db, _ := cmd.Flags().GetString("db"); db != "" {
				cfg.DatabasePath = db
			}

			dev, _ := cmd.Flags().GetBool("dev")
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, dev)
			if err != nil {
				return err
			}
			log.SetLogger(logger)

			ctx := log.IntoContext(cmd.Context(), logger)
			cmd.SetContext(context.WithValue(ctx, cfgKey, cfg))
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	root.PersistentFlags().String("db", "", "SQLite database path (overrides the configuration)")
	root.PersistentFlags().Bool("dev", false, "Use development logging")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newBountiesCmd())
	return root
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

// newLogger builds the zap-backed logger for level, one of debug, info or
// error.
func newLogger(w io.Writer, level string, dev bool) (logr.Logger, error) {
	var lvl zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info", "":
		lvl = zapcore.InfoLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		return logr.Discard(), fmt.Errorf("unknown log level %q", level)
	}
	return zap.New(zap.WriteTo(w), zap.UseDevMode(dev), zap.Level(lvl)), nil
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
