// Package commands implements the financectl operator CLI.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"financeapi/internal/auth"
	"financeapi/internal/config"
	"financeapi/internal/database"
	"financeapi/internal/database/migration"
	"financeapi/internal/repository/postgres"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Migrator applies and inspects schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Version() (version uint, dirty, ok bool, err error)
	Close() error
}

// UserSeeder creates a user unless the email or username is taken.
type UserSeeder interface {
	EnsureUser(ctx context.Context, in auth.RegisterInput) (bool, error)
}

// Deps are the resources the commands open on demand, so that commands which do
// not touch the database never connect.
type Deps struct {
	Config       *config.AppConfig
	Out          io.Writer
	OpenMigrator func(cfg *config.AppConfig) (Migrator, error)
	OpenSeeder   func(ctx context.Context, cfg *config.AppConfig) (UserSeeder, func() error, error)
}

// DefaultDeps connects to the database described by cfg.
func DefaultDeps(cfg *config.AppConfig, out io.Writer) Deps {
	return Deps{
		Config: cfg,
		Out:    out,
		OpenMigrator: func(cfg *config.AppConfig) (Migrator, error) {
			dsn, err := database.DSN(cfg.Database)
			if err != nil {
				return nil, err
			}
			return migration.New(dsn, database.Host(cfg.Database))
		},
		OpenSeeder: func(ctx context.Context, cfg *config.AppConfig) (UserSeeder, func() error, error) {
			db, err := database.NewPostgres(ctx, cfg.Database)
			if err != nil {
				return nil, nil, err
			}
			tokens := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.SessionMaxAge)
			return auth.NewService(postgres.NewUserPostgres(db), tokens, cfg.Auth.BcryptCost), db.Close, nil
		},
	}
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(deps Deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "financectl",
		Short:   "Operator tooling for the finance API",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	if deps.Out != nil {
		rootCmd.SetOut(deps.Out)
	}

	rootCmd.AddCommand(newMigrateCommand(deps))
	rootCmd.AddCommand(newSeedAdminCommand(deps))

	return rootCmd
}
