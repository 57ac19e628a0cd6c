package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/config"
)

// NewInitCmd creates the init command (run by the programmer, once).
func NewInitCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		projectName string
		gitURL      string
		assetRoot   string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a project config file",
		Long: `Init writes a commented starter config for a new project. Hand the
generated file to the artists; everything they need is in it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteStarter(output, projectName, gitURL, assetRoot)
			if err != nil {
				return errors.Errorf("generating config: %w", err)
			}

			rootOpts.UserLogger.LogValidation(true, "Config written to "+path)
			rootOpts.UserLogger.LogStep("Next: have the artist run `handoff -c " + path + " setup`")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectName, "name", "", "project name")
	cmd.Flags().StringVar(&gitURL, "repo", "", "git repository URL (https)")
	cmd.Flags().StringVar(&assetRoot, "asset-root", config.DefaultAssetRoot, "asset root inside the repository")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default <project>.yaml)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("repo")

	return cmd
}
