package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"task-management/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample accounts and tasks",
	Long: `Load sample accounts and tasks from a YAML file. Accounts and tasks
that already exist are left untouched, so seed can be run more than once.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedFile
		if path == "" {
			path = cfg.SeedFile
		}
		f, err := seed.Load(path)
		if err != nil {
			return err
		}
		s, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer s.db.Close()

		res, err := seed.Apply(cmd.Context(), s.accounts, s.tasks, f, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts and %d tasks from %s\n", res.Accounts, res.Tasks, path)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (default SEED_FILE)")
}
