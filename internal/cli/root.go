package cli

import (
	"fmt"

	"github.com/Freeeeeet/slot_swapper/internal/app"
	"github.com/Freeeeeet/slot_swapper/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds what every subcommand shares once the root has run.
type RootOptions struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRootCommand creates the slotswap command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "slotswap",
		Short: "Slot Swapper - trade calendar slots with other people",
		Long: `Slot Swapper keeps per-user calendar slots and lets users exchange them
through swap requests, over a JSON HTTP API and a Telegram bot.

Settings come from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := app.NewLogger(cfg.Environment)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			opts.Config = cfg
			opts.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.Logger != nil {
				_ = opts.Logger.Sync()
			}
		},
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
