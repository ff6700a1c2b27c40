// Package websites implements commands for inspecting configured
// websites.
package websites

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsgrabber/cmd/common"
	"github.com/jonesrussell/newsgrabber/internal/domain"
	"github.com/jonesrussell/newsgrabber/internal/logger"
)

// Command creates the websites command group.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "websites",
		Short: "Manage configured websites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand())

	return cmd
}

// TableRenderer displays websites in a table.
type TableRenderer struct {
	logger logger.Interface
}

// NewTableRenderer creates a TableRenderer.
func NewTableRenderer(log logger.Interface) *TableRenderer {
	return &TableRenderer{logger: log}
}

// RenderTable formats and prints the website list.
func (r *TableRenderer) RenderTable(websites []*domain.Website) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Label", "URL", "Rate/min", "Active", "Last Scraped"})

	for _, website := range websites {
		lastScraped := "never"
		if website.LastScrapedAt != nil {
			lastScraped = website.LastScrapedAt.Format("2006-01-02 15:04")
		}

		t.AppendRow(table.Row{
			website.ID,
			website.Label,
			website.URL,
			website.RateLimitPerMinute,
			website.Active,
			lastScraped,
		})
	}

	t.Render()
}

// WebsiteListing supplies the rows to display.
type WebsiteListing interface {
	List(ctx context.Context) ([]*domain.Website, error)
}

// Lister loads and displays websites.
type Lister struct {
	websites WebsiteListing
	logger   logger.Interface
	renderer *TableRenderer
}

// NewLister creates a Lister.
func NewLister(websites WebsiteListing, log logger.Interface, renderer *TableRenderer) *Lister {
	return &Lister{websites: websites, logger: log, renderer: renderer}
}

// Start runs the list operation.
func (l *Lister) Start(ctx context.Context) error {
	websites, err := l.websites.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list websites: %w", err)
	}

	if len(websites) == 0 {
		l.logger.Info("no websites configured")
		return nil
	}

	l.renderer.RenderTable(websites)
	return nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configured websites",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			pipeline := common.NewPipeline(deps)

			lister := NewLister(pipeline.Websites, deps.Logger, NewTableRenderer(deps.Logger))
			return lister.Start(cmd.Context())
		},
	}
}
