package cli

import (
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/slot_swapper/internal/app"
	"github.com/Freeeeeet/slot_swapper/internal/config"
	"github.com/spf13/cobra"
)

// UserCreateOptions holds flags for user create.
type UserCreateOptions struct {
	*RootOptions
	Username  string
	FirstName string
	LastName  string
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	cmd.AddCommand(newUserCreateCommand(rootOpts))
	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserCreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user that is not tied to a Telegram account",
		Long: `Create a user for HTTP API clients and print it as JSON.

Example:
  slotswap user create --username ada --first-name Ada
  slotswap token issue <printed id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Config.Storage != config.StoragePostgres {
				return fmt.Errorf("user create needs STORAGE=%s, in-memory users vanish when the command exits", config.StoragePostgres)
			}

			a, err := app.New(cmd.Context(), opts.Config, opts.Logger)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Users.CreateUser(cmd.Context(), opts.Username, opts.FirstName, opts.LastName)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "username, a leading @ is dropped")
	cmd.Flags().StringVar(&opts.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "", "last name")

	return cmd
}
