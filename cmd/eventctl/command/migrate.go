package command

import (
	"context"
	"fmt"
	"text/tabwriter"

	"eventhub/database"
	"eventhub/internal/config"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// migrateCmd groups the schema migration subcommands
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration commands",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, _ *config.Config, db *gorm.DB, log zerolog.Logger) error {
			if err := database.Migrate(ctx, db, log); err != nil {
				return err
			}
			success.Fprintln(cmd.OutOrStdout(), "✓ Database is up to date")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, _ *config.Config, db *gorm.DB, log zerolog.Logger) error {
			return database.Rollback(ctx, db, log)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(cmd, func(ctx context.Context, _ *config.Config, db *gorm.DB, _ zerolog.Logger) error {
			states, err := database.MigrationStatus(ctx, db)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tMIGRATION\tAPPLIED AT")
			for _, s := range states {
				applied := pending.Sprint("pending")
				if s.Applied {
					applied = success.Sprint(s.AppliedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Path, applied)
			}
			return w.Flush()
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
