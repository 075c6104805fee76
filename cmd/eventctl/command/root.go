package command

// root.go defines the root command of eventctl, the operator tool that runs
// next to the API server against the same database.

import (
	"context"
	"fmt"
	"os"
	"time"

	"eventhub/database"
	"eventhub/internal/config"
	"eventhub/internal/logger"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	timeout time.Duration // global deadline for a single command
	verbose bool
	noColor bool

	success = color.New(color.FgGreen)
	pending = color.New(color.FgYellow)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eventctl",
	Short: "eventctl - EventHub operator tool",
	Long: `eventctl manages an EventHub deployment. It reads the same environment
(or .env file) as the API server and can:
- apply, roll back and inspect database migrations
- create the first admin account or promote an existing one
- run a single event reminder pass`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "deadline for the command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	}
}

// setup loads the configuration and builds the command logger.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return cfg, logger.NewWithWriter(os.Stderr, level, "text"), nil
}

// withDB runs fn with a database connection that is closed afterwards.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, db *gorm.DB, log zerolog.Logger) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL, database.DefaultPoolConfig(), log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(ctx, cfg, db, log)
}
