package commands

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/gitrepo"
)

// NewDeleteCmd creates the delete command: remove matching files from the
// working copy and push a single commit.
func NewDeleteCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete PATTERN",
		Short: "Delete matching files from the repository",
		Long: `Delete removes files matching a glob pattern from the working copy,
records the removal as one commit, and pushes it.

Example:
  handoff -c game.yaml delete "Hero_*.fbx"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pattern := args[0]

			cfg, err := rootOpts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			repo := gitrepo.New(cfg.RepoDir())
			if !repo.Exists() {
				return errors.Errorf("working copy missing at %s, run setup first", cfg.RepoDir())
			}

			matches, err := findMatches(cfg.RepoDir(), pattern)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				rootOpts.UserLogger.LogStep("No files match " + pattern)
				return nil
			}

			for _, rel := range matches {
				pterm.Info.Println("  " + rel)
			}
			if !yes {
				confirmed, err := pterm.DefaultInteractiveConfirm.
					WithDefaultText("Delete these " + pterm.Sprintf("%d", len(matches)) + " files?").
					Show()
				if err != nil || !confirmed {
					rootOpts.UserLogger.LogStep("Cancelled")
					return nil
				}
			}

			for _, rel := range matches {
				if err := repo.Remove(ctx, filepath.Join(cfg.RepoDir(), rel)); err != nil {
					return errors.Errorf("removing %s: %w", rel, err)
				}
			}
			if err := repo.Commit(ctx, "Delete: "+pattern); err != nil {
				return errors.Errorf("committing removal: %w", err)
			}
			if err := repo.Push(ctx, cfg.Git.Branch); err != nil {
				return errors.Errorf("pushing removal: %w", err)
			}

			rootOpts.UserLogger.LogValidation(true, pterm.Sprintf("Deleted %d files", len(matches)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// findMatches walks the working copy and returns repo-relative paths whose
// name (or, for patterns containing a slash, relative path) matches the
// doublestar pattern. The git metadata directory is never considered.
func findMatches(repoDir, pattern string) ([]string, error) {
	var matches []string

	err := filepath.WalkDir(repoDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(repoDir, path)
		if err != nil {
			return err
		}

		subject := d.Name()
		if strings.Contains(pattern, "/") {
			subject = filepath.ToSlash(rel)
		}
		ok, err := doublestar.Match(pattern, subject)
		if err != nil {
			return errors.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("searching working copy: %w", err)
	}
	return matches, nil
}
