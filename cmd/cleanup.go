package cmd

import (
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-identity/app/repository"
	"github.com/vibast-solutions/ms-go-identity/app/service"
	"github.com/vibast-solutions/ms-go-identity/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var cleanupTokensCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "Delete expired password reset tokens",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open("mysql", cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		tokenRepo := repository.NewPasswordResetTokenRepository(db)
		resetService := service.NewPasswordResetService(db, tokenRepo, cfg.ResetTokenTTL)

		count, err := resetService.CleanupExpiredTokens(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("deleted %d expired reset tokens\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupTokensCmd)
}
