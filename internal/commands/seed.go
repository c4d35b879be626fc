package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"financeapi/internal/auth"
)

var errSeedPasswordRequired = errors.New("admin password is required (--password or SEED_ADMIN_PASSWORD)")

func newSeedAdminCommand(deps Deps) *cobra.Command {
	seed := deps.Config.Seed
	in := auth.RegisterInput{
		Name:     seed.AdminName,
		Username: seed.AdminUsername,
		Email:    seed.AdminEmail,
		Password: seed.AdminPassword,
	}

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the administrator account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				return errSeedPasswordRequired
			}

			seeder, closeFn, err := deps.OpenSeeder(cmd.Context(), deps.Config)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer closeFn()

			created, err := seeder.EnsureUser(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("seeding admin: %w", err)
			}
			if created {
				cmd.Printf("created admin user %s\n", in.Username)
			} else {
				cmd.Printf("admin user %s already exists\n", in.Username)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", in.Email, "admin email")
	cmd.Flags().StringVar(&in.Username, "username", in.Username, "admin username")
	cmd.Flags().StringVar(&in.Password, "password", in.Password, "admin password")
	cmd.Flags().StringVar(&in.Name, "name", in.Name, "admin display name")

	return cmd
}
