package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/slot_swapper/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the Telegram bot",
		Long: `Run the HTTP API on HTTP_ADDR and, when TELEGRAM_TOKEN is set, the Telegram bot.

Both surfaces share one storage backend and stop on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	opts.Logger.Info("Starting slot swapper",
		zap.String("environment", opts.Config.Environment),
		zap.String("storage", opts.Config.Storage),
		zap.Bool("http", opts.Config.HTTPEnabled()),
		zap.Bool("bot", opts.Config.BotEnabled()),
	)

	a, err := app.New(ctx, opts.Config, opts.Logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		return err
	}

	opts.Logger.Info("Slot swapper stopped")
	return nil
}
