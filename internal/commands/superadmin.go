package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-management/internal/apperror"
	"task-management/internal/service"
)

var newSuperAdmin service.NewAccount

var superadminCmd = &cobra.Command{
	Use:   "create-superadmin",
	Short: "Create a superadmin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context())
		if err != nil {
			return err
		}
		defer s.db.Close()

		// Superadmin hanya bisa dibuat dari sini, tidak lewat HTTP.
		accounts := service.NewAccountService(s.accounts, s.tasks, nil)
		a, err := accounts.CreateSuperAdmin(cmd.Context(), newSuperAdmin)
		if err != nil {
			if fields := apperror.Fields(err); len(fields) > 0 {
				for field, msg := range fields {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
				}
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Superadmin %q created with id %d\n", a.Username, a.ID)
		return nil
	},
}

func init() {
	flags := superadminCmd.Flags()
	flags.StringVarP(&newSuperAdmin.Username, "username", "u", "", "username")
	flags.StringVarP(&newSuperAdmin.Email, "email", "e", "", "email address")
	flags.StringVarP(&newSuperAdmin.Password, "password", "p", "", "password")
	flags.StringVar(&newSuperAdmin.FirstName, "first-name", "", "first name")
	flags.StringVar(&newSuperAdmin.LastName, "last-name", "", "last name")
	_ = superadminCmd.MarkFlagRequired("username")
	_ = superadminCmd.MarkFlagRequired("password")
}
