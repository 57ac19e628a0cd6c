// Copyright 2025 gameforge
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
	"os"

	"github.com/spf13/cobra"

	"github.com/gameforge/handoff/cmd/handoff/commands"
	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/log"
)

func main() {
	rootOpts := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "handoff",
		Short: "Automated handoff of game-asset files into version control",
		Long: `handoff moves asset files from a local inbox into a version-controlled
repository at a canonical path derived from each file's name, committing and
pushing every handoff. Files that cannot be handed off are kept either in the
inbox or in the failed directory; nothing is ever silently lost.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&rootOpts.ConfigPath, "config", "c", "", "project config file (.yaml or .hcl)")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "d", false, "enable debug logging")

	ctx := context.Background()

	// Flag values are only bound after parsing, so logging is wired here.
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logCtx := setupLogging(cmd.Context(), rootOpts.Debug)
		rootOpts.UserLogger = log.NewUserLogger(logCtx)
		cmd.SetContext(logCtx)
	}

	rootCmd.AddCommand(
		commands.NewInitCmd(rootOpts),
		commands.NewSetupCmd(rootOpts),
		commands.NewProcessCmd(rootOpts),
		commands.NewDeleteCmd(rootOpts),
		commands.NewStatusCmd(rootOpts),
		commands.NewTokenCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if rootOpts.UserLogger != nil {
			rootOpts.UserLogger.LogFailure("Command failed", err)
		} else {
			fmt.Fprintln(os.Stderr, "handoff:", err)
		}
		os.Exit(1)
	}
}
