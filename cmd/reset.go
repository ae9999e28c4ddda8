package cmd

import (
	"fmt"
	"strings"

	"github.com/azafe/Bandidos-backend/app/repository"
	"github.com/azafe/Bandidos-backend/app/service"
	"github.com/azafe/Bandidos-backend/app/types"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Password reset operations",
}

var resetRequestCmd = &cobra.Command{
	Use:   "request <email>",
	Short: "Issue a password reset link for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &types.ForgotPasswordRequest{Email: strings.TrimSpace(args[0])}
		if err := req.Validate(); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		sender, queueClient, err := newEmailSender(cfg)
		if err != nil {
			return err
		}
		if queueClient != nil {
			defer queueClient.Close()
		}

		resetService := service.NewPasswordResetService(
			repository.NewPasswordResetStore(db, dialect),
			sender,
			cfg,
			service.WithAsyncRunner(func(task func()) { task() }),
		)
		err = resetService.RequestReset(cmd.Context(), req.GetEmail(), service.ClientInfo{
			IP:        "cli",
			UserAgent: "bandidos-cli",
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "reset requested for %s\n", req.GetEmail())
		return nil
	},
}

func init() {
	resetCmd.AddCommand(resetRequestCmd)
	rootCmd.AddCommand(resetCmd)
}
