package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/pipeline"
)

// NewProcessCmd creates the process command, the core of the tool.
func NewProcessCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Hand off inbox files to the repository",
		Long: `Process hands off files one at a time: parse the filename, move the
file to its canonical path in the working copy, then pull, add, commit and
push. Failed files stay in the inbox or end up in the failed directory.
The exit status is non-zero when any file failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := rootOpts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			proc, err := pipeline.New(pipeline.Options{Config: cfg})
			if err != nil {
				return errors.Errorf("building pipeline: %w", err)
			}

			list, err := resolveFiles(cfg.Inbox(), files)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				rootOpts.UserLogger.LogStep("Inbox is empty: " + cfg.Inbox())
				return nil
			}

			batch := proc.ProcessBatch(ctx, list)
			if batch.Failed > 0 {
				return errors.Errorf("%d of %d files failed", batch.Failed, batch.Failed+batch.Succeeded)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "process only this file (repeatable; default: whole inbox)")

	return cmd
}

// resolveFiles turns the --file flags into absolute paths, defaulting to
// every regular file in the inbox. Bare names are looked up in the inbox.
func resolveFiles(inbox string, flagged []string) ([]string, error) {
	if len(flagged) == 0 {
		entries, err := os.ReadDir(inbox)
		if err != nil {
			return nil, errors.Errorf("reading inbox %s: %w", inbox, err)
		}
		var list []string
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				list = append(list, filepath.Join(inbox, entry.Name()))
			}
		}
		return list, nil
	}

	list := make([]string, 0, len(flagged))
	for _, f := range flagged {
		if !filepath.IsAbs(f) && filepath.Base(f) == f {
			candidate := filepath.Join(inbox, f)
			if _, err := os.Stat(candidate); err == nil {
				list = append(list, candidate)
				continue
			}
		}
		list = append(list, f)
	}
	return list, nil
}
