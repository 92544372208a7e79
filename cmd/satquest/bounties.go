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
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

func newBountiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounties",
		Short: "List bounties across all projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getCfg(cmd)

			raw, _ := cmd.Flags().GetString("status")
			status, err := model.ParseStatus(raw)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			db, err := store.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			issues, total, err := db.ListIssues(cmd.Context(), status, limit, 0)
			if err != nil {
				return err
			}
			return printBounties(cmd.OutOrStdout(), issues, total)
		},
	}
	cmd.Flags().String("status", string(model.StatusOpen), "Issue status to list")
	cmd.Flags().Int("limit", 50, "Maximum number of bounties to show")
	return cmd
}

func printBounties(w io.Writer, issues []*model.IssueWithProject, total int) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "No bounties found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tISSUE\tTITLE\tREWARD\tUPDATED")
	for _, is := range issues {
		fmt.Fprintf(tw, "%s\t#%d\t%s\t%s sats\t%s\n",
			is.Project.Name,
			is.Number,
			is.Title,
			humanize.Comma(is.RewardAmount),
			humanize.Time(is.UpdatedAt),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if total > len(issues) {
		_, err := fmt.Fprintf(w, "\nShowing %d of %d bounties.\n", len(issues), total)
		return err
	}
	return nil
}
