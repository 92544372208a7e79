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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/api"
	"github.com/satquest/satquest/internal/auth"
	"github.com/satquest/satquest/internal/cleanup"
	"github.com/satquest/satquest/internal/github"
	"github.com/satquest/satquest/internal/metrics"
	"github.com/satquest/satquest/internal/server"
	"github.com/satquest/satquest/internal/store"
	"github.com/satquest/satquest/internal/webhook"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getCfg(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := log.FromContext(ctx)

			db, err := store.Open(ctx, cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			if cfg.Webhook.Secret == "" {
				logger.Info("Webhook secret is not set; every delivery will be rejected")
			}
			if !cfg.OAuthConfigured() {
				logger.Info("GitHub OAuth is not configured; sign-in is disabled")
			}

			m := metrics.New()
			hooks := webhook.NewHandler(cfg.Webhook, webhook.NewRouter(db), webhook.WithRecorder(m))
			authSvc := auth.NewService(cfg, db, github.NewClient)
			rest := api.New(cfg, db, authSvc, api.WithRewardRecorder(m))

			srv := server.New(cfg.Addr, cfg.Port,
				server.WithWebhook(hooks),
				server.WithAPI(rest),
				server.WithMetrics(m.Handler()),
				server.WithHealthCheck(db),
			)
			if cfg.Session.CleanupInterval > 0 {
				go cleanup.NewScheduler(db, cfg.Session.CleanupInterval).Start(ctx) //nolint:errcheck
			}

			logger.Info("SatQuest starting", "version", version, "webhookURL", cfg.WebhookURL())
			return srv.Start(ctx)
		},
	}
}
