package cmd

import (
	"fmt"

	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/spf13/cobra"
)

var adminInput services.RegisterInput

// Admins cannot sign up through the API.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()
		if err := config.Migrate(a.db); err != nil {
			return err
		}

		svc := services.New(a.db, services.Options{Logger: a.log})
		u, err := svc.Auth.CreateAdmin(cmd.Context(), adminInput)
		if err != nil {
			return err
		}
		a.log.Info().Uint("user_id", u.ID).Str("email", u.Email).Msg("admin created")
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminInput.Name, "name", "Administrator", "display name")
	f.StringVar(&adminInput.Email, "email", "", "login email")
	f.StringVar(&adminInput.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&adminInput.Phone, "phone", "", "contact phone")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
