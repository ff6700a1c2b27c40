// Package scrape implements the manual dispatch command.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsgrabber/cmd/common"
	"github.com/jonesrussell/newsgrabber/internal/domain"
)

// Command creates the scrape command.
func Command() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "scrape [website-id...]",
		Short: "Scrape one or more websites now",
		Long: `Create and run scrape jobs for the given website IDs, or for every
active website with --all. The command waits for all jobs to finish.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("specify at least one website ID or --all")
			}

			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			pipeline := common.NewPipeline(deps)

			websites, err := selectWebsites(cmd.Context(), pipeline, all, args)
			if err != nil {
				return err
			}

			for _, website := range websites {
				job, createErr := pipeline.Jobs.Create(cmd.Context(), website.ID)
				if createErr != nil {
					return fmt.Errorf("failed to create job for website %d: %w", website.ID, createErr)
				}

				deps.Logger.Info("job dispatched",
					"job_id", job.ID,
					"website_id", website.ID,
					"label", website.Label,
				)
				pipeline.Runner.Dispatch(cmd.Context(), website, job)
			}

			pipeline.Runner.Drain()
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "scrape every active website")

	return cmd
}

// selectWebsites resolves the dispatch targets from the flag and args.
func selectWebsites(ctx context.Context, pipeline *common.Pipeline, all bool, args []string) ([]*domain.Website, error) {
	if all {
		websites, err := pipeline.Websites.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active websites: %w", err)
		}
		return websites, nil
	}

	var websites []*domain.Website
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid website ID %q", arg)
		}

		website, err := pipeline.Websites.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		websites = append(websites, website)
	}

	return websites, nil
}
