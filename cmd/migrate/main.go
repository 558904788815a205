package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cookbook/api/internal/infrastructure/config"
	"github.com/cookbook/api/internal/infrastructure/logger"
	"github.com/cookbook/api/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// cli carries the state shared by the subcommands
type cli struct {
	migrationsPath string
	logLevel       string
	log            *zap.Logger
}

func main() {
	c := &cli{}
	root := c.rootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Cookbook database migration tool",
		Long:          "Applies and inspects the SQL migrations of the PostgreSQL schema.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Console(c.logLevel))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			c.migrationsPath, err = resolveMigrationsPath(c.migrationsPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync(c.log)
		},
	}

	cmd.PersistentFlags().StringVar(&c.migrationsPath, "path", "", "path to the migrations directory (default ./migrations)")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		c.upCommand(),
		c.downCommand(),
		c.stepsCommand(),
		c.versionCommand(),
		c.forceCommand(),
		c.createCommand(),
		c.listCommand(),
	)
	return cmd
}

func (c *cli) upCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMigrator(func(m *migration.Migrator) error { return m.Up() })
		},
	}
}

func (c *cli) downCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMigrator(func(m *migration.Migrator) error { return m.Down() })
		},
	}
}

func (c *cli) stepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations, or roll back when n is negative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
		},
	}
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					c.log.Info("No migrations applied")
					return nil
				}
				c.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			})
		},
	}
}

func (c *cli) forceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the version without running migrations, clearing the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			c.log.Warn("Forcing migration version", zap.Int("version", version))
			return c.withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
		},
	}
}

func (c *cli) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := migration.CreateMigration(c.migrationsPath, args[0])
			if err != nil {
				return err
			}
			c.log.Info("Migration created",
				zap.Uint("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the migrations found on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := migration.ListMigrations(c.migrationsPath)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				c.log.Info("No migrations found")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%06d %s\n", f.Version, f.Name)
			}
			return nil
		},
	}
}

// withMigrator opens the configured database, runs fn and closes everything
func (c *cli) withMigrator(fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	m, err := migration.Open(&cfg.Database, c.migrationsPath, c.log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}

// resolveMigrationsPath falls back to ./migrations, then to the directory two
// levels above the executable
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	return filepath.Abs(path)
}
