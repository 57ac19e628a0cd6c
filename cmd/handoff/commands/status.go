package commands

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/gitrepo"
)

// NewStatusCmd creates the status command.
func NewStatusCmd(rootOpts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List pending inbox files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := rootOpts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(cfg.Inbox())
			if err != nil {
				return errors.Errorf("reading inbox %s: %w", cfg.Inbox(), err)
			}

			rootOpts.UserLogger.LogStep("Inbox: " + cfg.Inbox())

			count := 0
			for _, entry := range entries {
				if !entry.Type().IsRegular() {
					continue
				}
				count++
				info, err := entry.Info()
				if err != nil {
					continue
				}
				sizeMB := float64(info.Size()) / (1024 * 1024)
				pterm.Info.Printf("  %s (%.2f MB)\n", entry.Name(), sizeMB)
			}
			if count == 0 {
				rootOpts.UserLogger.LogStep("Inbox is empty")
			} else {
				rootOpts.UserLogger.LogStep(pterm.Sprintf("%d files pending, run `handoff -c %s process`", count, rootOpts.ConfigPath))
			}

			// Working-copy status is diagnostic only.
			repo := gitrepo.New(cfg.RepoDir())
			if repo.Exists() {
				if out, err := repo.Status(ctx); err == nil && out != "" {
					rootOpts.UserLogger.LogStep("Working copy has uncommitted changes:")
					for _, line := range strings.Split(out, "\n") {
						pterm.Warning.Println("  " + line)
					}
				}
			}

			return nil
		},
	}

	return cmd
}
