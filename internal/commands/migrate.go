package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"task-management/internal/repository"
	"task-management/pkg/database"
	"task-management/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the accounts and tasks tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer s.db.Close()
		logger.SystemLogger.Info("Schema ready", zap.String("database", dbName()))
		fmt.Fprintln(cmd.OutOrStdout(), "Schema ready")
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every table, then create them again",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("reset deletes all data in %q, pass --yes to confirm", dbName())
		}
		ctx := cmd.Context()
		db, err := database.ConnectDB(ctx, cfg, dbName())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := repository.DeleteAllTable(ctx, db); err != nil {
			return err
		}
		if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
			return err
		}
		logger.SystemLogger.Warn("Database reset", zap.String("database", dbName()))
		fmt.Fprintln(cmd.OutOrStdout(), "Database reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm dropping all tables")
}
