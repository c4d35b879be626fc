package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				if err := m.Up(cmd.Context()); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				if err := m.Down(cmd.Context()); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				return printVersion(cmd, m)
			})
		},
	})

	return cmd
}

func withMigrator(deps Deps, fn func(Migrator) error) error {
	m, err := deps.OpenMigrator(deps.Config)
	if err != nil {
		return fmt.Errorf("opening migrator: %w", err)
	}
	defer m.Close()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	version, dirty, ok, err := m.Version()
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	switch {
	case !ok:
		cmd.Println("schema version: none")
	case dirty:
		cmd.Printf("schema version: %d (dirty)\n", version)
	default:
		cmd.Printf("schema version: %d\n", version)
	}
	return nil
}
