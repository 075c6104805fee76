package command

import (
	"context"
	"fmt"

	"eventhub/internal/config"
	"eventhub/internal/microservices/http-api/repository"
	"eventhub/internal/microservices/http-api/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// createAdminCmd creates the first admin account or promotes an existing user
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		return withDB(cmd, func(ctx context.Context, cfg *config.Config, db *gorm.DB, log zerolog.Logger) error {
			users := repository.NewUserRepository(db)
			user, created, err := service.BootstrapAdmin(ctx, users, name, email, password, cfg.BcryptCost)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			log.Info().Str("user_id", user.ID).Bool("created", created).Msg("admin ensured")
			if created {
				success.Fprintf(cmd.OutOrStdout(), "✓ Admin account created for %s\n", user.Email)
			} else {
				success.Fprintf(cmd.OutOrStdout(), "✓ %s promoted to admin\n", user.Email)
			}
			return nil
		})
	},
}

func init() {
	createAdminCmd.Flags().StringP("name", "n", "", "display name for a new account")
	createAdminCmd.Flags().StringP("email", "e", "", "email address of the account")
	createAdminCmd.Flags().StringP("password", "p", "", "password for a new account (min 6 characters)")
	createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}
