// Package migrate implements the schema migration command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsgrabber/cmd/common"
	"github.com/jonesrussell/newsgrabber/internal/database"
)

// Command creates the migrate command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  `Apply the embedded schema and triggers. Statements are idempotent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			if err := database.Migrate(cmd.Context(), deps.DB); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			deps.Logger.Info("schema applied")
			return nil
		},
	}
}
