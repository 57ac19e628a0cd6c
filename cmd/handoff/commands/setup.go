package commands

import (
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/gitrepo"
	"github.com/gameforge/handoff/pkg/token"
)

// NewSetupCmd creates the setup command (run by the artist, once per machine).
func NewSetupCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the workspace and clone the repository",
		Long: `Setup prepares a machine for handoffs. It will:
1. Create the workspace directories (inbox, failed, logs)
2. Clone the project repository into the hidden working copy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := rootOpts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			rootOpts.UserLogger.LogStep("Setting up workspace for " + cfg.Project.Name)

			if err := cfg.EnsureDirs(); err != nil {
				return errors.Errorf("creating workspace: %w", err)
			}
			rootOpts.UserLogger.LogValidation(true, "Inbox ready at "+cfg.Inbox())

			repo := gitrepo.New(cfg.RepoDir())
			if repo.Exists() {
				if !force {
					rootOpts.UserLogger.LogValidation(true, "Working copy already exists, nothing to do (use --force to re-clone)")
					return nil
				}
				if err := os.RemoveAll(cfg.RepoDir()); err != nil {
					return errors.Errorf("removing existing working copy: %w", err)
				}
			}

			cloneURL := cfg.Git.Repository
			if storage, err := token.NewStorage(); err == nil {
				if tok, ok := storage.Get(cfg.Project.Name); ok {
					cloneURL = token.InjectURL(cloneURL, tok)
				}
			}

			rootOpts.UserLogger.LogStep("Cloning repository (this can take a while)")
			if err := repo.Clone(ctx, cloneURL, cfg.Git.Branch); err != nil {
				return errors.Errorf("cloning repository: %w", err)
			}

			rootOpts.UserLogger.LogValidation(true, "Repository cloned")
			rootOpts.UserLogger.LogStep("Drop files into " + cfg.Inbox() + " and run `handoff -c " + rootOpts.ConfigPath + " process`")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "remove and re-clone an existing working copy")

	return cmd
}
