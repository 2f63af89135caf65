package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// NewSweepCmd expires abandoned attempts once and exits. Useful from cron when the
// server runs with the sweeper disabled.
func NewSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Expire attempts whose quiz window has closed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), *configPath)
		},
	}
}

func runSweep(ctx context.Context, configPath string) error {
	app, err := newApplication(ctx, configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	expired, err := app.sweeper.SweepExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	app.logger.Info("sweep finished", "expired", expired)
	return nil
}
