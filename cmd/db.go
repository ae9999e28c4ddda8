package cmd

import (
	"fmt"

	"github.com/azafe/Bandidos-backend/app/repository"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database utilities",
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify database connectivity and print the server time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, _, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		var now string
		if err = db.QueryRowContext(cmd.Context(), "SELECT NOW()").Scan(&now); err != nil {
			return fmt.Errorf("query server time: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "database: ok (%s, server time %s)\n", cfg.Database.Driver, now)
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the password reset and audit tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := repository.Migrate(cmd.Context(), db, dialect)
		if err != nil {
			return fmt.Errorf("migrate (%d statements applied): %w", applied, err)
		}
		logrus.WithFields(logrus.Fields{"dialect": dialect, "statements": applied}).Info("Schema up to date")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbCheckCmd, dbMigrateCmd)
	rootCmd.AddCommand(dbCmd)
}
