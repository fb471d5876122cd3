package commands

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"task-management/configs"
	"task-management/internal/repository"
	"task-management/pkg/crypto"
	"task-management/pkg/database"
	"task-management/pkg/logger"
)

var (
	cfg       configs.Config
	useTestDB bool
)

// dbName is the database the commands work on.
func dbName() string {
	if useTestDB {
		return cfg.DBNameTest
	}
	return cfg.DBName
}

var rootCmd = &cobra.Command{
	Use:   "taskctl",
	Short: "Maintenance commands for the task management service",
	Long: `taskctl prepares the task management database: it creates the
schema, loads sample data and bootstraps the first superadmin.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = configs.LoadConfig()
		logger.InitLoggers(cfg.LogDir)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.SyncLoggers()
	},
	SilenceUsage: true,
}

// stores holds the open database and the stores built on it.
type stores struct {
	db       *sql.DB
	accounts *repository.AccountStore
	tasks    *repository.TaskStore
}

// openStores connects to the configured database and makes sure the schema
// exists.
func openStores(ctx context.Context) (*stores, error) {
	db, err := database.ConnectDB(ctx, cfg, dbName())
	if err != nil {
		return nil, err
	}
	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	cipher, err := crypto.NewCipher(cfg.ReportEncryptionKey)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		db:       db,
		accounts: repository.NewAccountStore(db),
		tasks:    repository.NewTaskStore(db, cipher),
	}, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&useTestDB, "test-db", false, "use DB_NAME_TEST instead of DB_NAME")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(superadminCmd)
}
