// Package scheduler implements the continuous scheduling service.
package scheduler

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsgrabber/cmd/common"
	"github.com/jonesrussell/newsgrabber/internal/runner"
)

// Command creates the scheduler command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run the continuous scrape scheduler",
		Long: `Periodically sweep active websites, creating and dispatching a scrape
job for each. Runs until interrupted; in-flight jobs finish before exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			pipeline := common.NewPipeline(deps)

			sweeper := runner.NewSweeper(
				pipeline.Websites,
				pipeline.Jobs,
				pipeline.Runner,
				deps.Logger,
				deps.Config.Scheduler.SweepInterval,
			)

			if err := sweeper.Start(cmd.Context()); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				deps.Logger.Info("shutdown signal received", "signal", sig.String())
			case <-cmd.Context().Done():
			}

			sweeper.Stop()
			return nil
		},
	}
}
