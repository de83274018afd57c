package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/api"
	"github.com/Freeeeeet/slot_swapper/internal/app"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/spf13/cobra"
)

// TokenIssueOptions holds flags for token issue.
type TokenIssueOptions struct {
	*RootOptions
	TTL time.Duration
}

// NewTokenCommand creates the token command group.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue API bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCommand(rootOpts))
	return cmd
}

func newTokenIssueCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenIssueOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Sign a bearer token for an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := service.ParseID("user id", args[0])
			if err != nil {
				return err
			}
			if opts.TTL <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", opts.TTL)
			}
			if opts.Config.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			a, err := app.New(cmd.Context(), opts.Config, opts.Logger)
			if err != nil {
				return err
			}
			defer a.Close()

			// Tokens for unknown users would be refused by the API anyway
			if _, err := a.Users.Resolve(cmd.Context(), userID); err != nil {
				return err
			}

			token, err := api.IssueToken([]byte(opts.Config.JWTSecret), userID, opts.TTL, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
