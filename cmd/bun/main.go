package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/Black-And-White-Club/tournament-results/db/bundb"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "tournament-results database migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(),
			newRiverCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadDSN(c *cli.Context) (string, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Postgres.DSN, nil
}

// withMigrators opens the database and hands fn the module migrators in dependency order.
func withMigrators(c *cli.Context, fn func([]moduleMigrator) error) error {
	dsn, err := loadDSN(c)
	if err != nil {
		return err
	}

	db := bundb.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn))))
	defer db.Close()

	var migrators []moduleMigrator
	for _, mod := range bundb.OrderedMigrations() {
		migrators = append(migrators, moduleMigrator{mod.Name, migrate.NewMigrator(db, mod.Migrations)})
	}
	return fn(migrators)
}

func findMigrator(migrators []moduleMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %s", name)
}

func newMultiModuleDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []moduleMigrator) error {
						// All modules share the bun_migrations table.
						return migrators[0].migrator.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []moduleMigrator) error {
						for _, m := range migrators {
							fmt.Printf("Running migrations for module: %s\n", m.name)
							group, err := m.migrator.Migrate(c.Context)
							if err != nil {
								return fmt.Errorf("module %s: %w", m.name, err)
							}
							if group.IsZero() {
								fmt.Printf("No new migrations to run for module: %s\n", m.name)
							} else {
								fmt.Printf("Migrated module: %s to %s\n", m.name, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module, newest module first",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []moduleMigrator) error {
						for i := len(migrators) - 1; i >= 0; i-- {
							m := migrators[i]
							group, err := m.migrator.Rollback(c.Context)
							if err != nil {
								return fmt.Errorf("module %s: %w", m.name, err)
							}
							if group.IsZero() {
								fmt.Printf("No groups to roll back for module: %s\n", m.name)
							} else {
								fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
							}
						}
						return nil
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []moduleMigrator) error {
						moduleName := c.Args().First()
						migrator, err := findMigrator(migrators, moduleName)
						if err != nil {
							return err
						}
						name := strings.Join(c.Args().Tail(), "_")
						mf, err := migrator.CreateGoMigration(c.Context, name)
						if err != nil {
							return err
						}
						fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
						return nil
					})
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []moduleMigrator) error {
						moduleName := c.Args().First()
						migrator, err := findMigrator(migrators, moduleName)
						if err != nil {
							return err
						}
						name := strings.Join(c.Args().Tail(), "_")
						files, err := migrator.CreateSQLMigrations(c.Context, name)
						if err != nil {
							return err
						}
						for _, mf := range files {
							fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
						}
						return nil
					})
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return withMigrators(c, func(migrators []moduleMigrator) error {
						for _, m := range migrators {
							ms, err := m.migrator.MigrationsWithStatus(c.Context)
							if err != nil {
								return err
							}
							fmt.Printf("Migrations for module: %s\n", m.name)
							fmt.Printf("  %s\n", ms)
							fmt.Printf("  Applied: %s\n", ms.Applied())
							fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
						}
						return nil
					})
				},
			},
		},
	}
}

func newRiverCommand() *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "River queue schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all River migrations",
				Action: func(c *cli.Context) error {
					return runRiver(c, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
				},
			},
			{
				Name:  "down",
				Usage: "roll back River migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of versions to roll back"},
				},
				Action: func(c *cli.Context) error {
					return runRiver(c, rivermigrate.DirectionDown, &rivermigrate.MigrateOpts{MaxSteps: c.Int("steps")})
				},
			},
		},
	}
}

func runRiver(c *cli.Context, direction rivermigrate.Direction, opts *rivermigrate.MigrateOpts) error {
	dsn, err := loadDSN(c)
	if err != nil {
		return err
	}
	res, err := bundb.MigrateRiver(c.Context, dsn, direction, opts)
	if err != nil {
		return err
	}
	if len(res.Versions) == 0 {
		fmt.Println("River schema already up to date")
		return nil
	}
	for _, v := range res.Versions {
		fmt.Printf("River %s: version %d (%s)\n", res.Direction, v.Version, v.Duration)
	}
	return nil
}
