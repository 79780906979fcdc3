package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rabiot125/Banking-Microservice/internal/config"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/store"
)

var migrateCommands = []string{"up", "down", "status", "reset", "version"}

func newMigrateCmd() *cobra.Command {
	var (
		schemaName  string
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "migrate <up|down|status|reset|version>",
		Short: "Run the embedded migrations of one service",
		Long: `Run goose migrations for a single service schema.

Each service keeps its own version table (goose_<schema>_version), so the
schemas can live in one database or in separate ones.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.ToLower(args[0])
			if !slices.Contains(migrateCommands, command) {
				return fmt.Errorf("unknown migration command %q (want one of %s)", args[0], strings.Join(migrateCommands, ", "))
			}
			schema, err := store.ParseSchema(schemaName)
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(".", config.CLI)
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if strings.TrimSpace(databaseURL) == "" {
				return fmt.Errorf("a database url is required: pass --database-url or set DATABASE_URL")
			}

			logg, err := logger.New("development", cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logg.Sync()

			ctx := cmd.Context()
			pool, err := store.NewPool(ctx, databaseURL, store.PoolOptions{MaxConns: 2})
			if err != nil {
				return err
			}
			defer pool.Close()

			db := store.OpenSQLDB(pool)
			defer db.Close()
			if err := store.Migrate(ctx, db, schema, command, logg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s completed for %s\n", command, schema)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaName, "service", "", "schema to migrate (customers, accounts or cards)")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")
	_ = cmd.MarkFlagRequired("service")
	return cmd
}
