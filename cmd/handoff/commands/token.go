package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/cmd/handoff/opts"
	"github.com/gameforge/handoff/pkg/token"
)

// NewTokenCmd creates the token command group for credential management.
func NewTokenCmd(rootOpts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage stored access tokens",
		Long: `Token manages the access tokens used for https pushes. Tokens are
stored encrypted at rest, keyed to this machine; copying the token file to
another machine makes it unreadable.`,
	}

	cmd.AddCommand(
		newTokenSetCmd(rootOpts),
		newTokenRemoveCmd(rootOpts),
		newTokenListCmd(rootOpts),
	)

	return cmd
}

func newTokenSetCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "set PROJECT",
		Short: "Validate and store a token for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project := args[0]

			tok := tokenFlag
			if tok == "" {
				entered, err := pterm.DefaultInteractiveTextInput.
					WithMask("*").
					Show("Access token for " + project)
				if err != nil {
					return errors.Errorf("reading token: %w", err)
				}
				tok = entered
			}
			if tok == "" {
				return errors.Errorf("empty token")
			}

			login, err := token.Validate(ctx, tok)
			if err != nil {
				return errors.Errorf("token rejected: %w", err)
			}
			rootOpts.UserLogger.LogValidation(true, "Token valid for GitHub user "+login)

			storage, err := token.NewStorage()
			if err != nil {
				return errors.Errorf("opening token storage: %w", err)
			}
			if err := storage.Save(project, tok); err != nil {
				return errors.Errorf("storing token: %w", err)
			}

			rootOpts.UserLogger.LogValidation(true, "Token stored for "+project)
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "token value (prompted when omitted)")

	return cmd
}

func newTokenRemoveCmd(rootOpts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT",
		Short: "Remove a stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := token.NewStorage()
			if err != nil {
				return errors.Errorf("opening token storage: %w", err)
			}
			if err := storage.Remove(args[0]); err != nil {
				return errors.Errorf("removing token: %w", err)
			}
			rootOpts.UserLogger.LogValidation(true, "Token removed for "+args[0])
			return nil
		},
	}
}

func newTokenListCmd(rootOpts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects with a stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := token.NewStorage()
			if err != nil {
				return errors.Errorf("opening token storage: %w", err)
			}

			projects := storage.Projects()
			if len(projects) == 0 {
				rootOpts.UserLogger.LogStep("No tokens stored")
				return nil
			}
			for _, project := range projects {
				pterm.Info.Println("  " + project)
			}
			return nil
		},
	}
}
