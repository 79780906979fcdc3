/**
 * @description
 * Embedded goose migrations. Each service owns one schema directory and its own
 * goose version table, so the three services can share a database or use
 * separate ones.
 *
 * @dependencies
 * - github.com/pressly/goose/v3: migration runner.
 * - github.com/jackc/pgx/v5/stdlib: database/sql adapter over the pgx pool.
 */
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// Schema names one service's migration set.
type Schema string

const (
	SchemaCustomers Schema = "customers"
	SchemaAccounts  Schema = "accounts"
	SchemaCards     Schema = "cards"
)

// ParseSchema validates a schema name.
func ParseSchema(s string) (Schema, error) {
	switch Schema(strings.ToLower(strings.TrimSpace(s))) {
	case SchemaCustomers:
		return SchemaCustomers, nil
	case SchemaAccounts:
		return SchemaAccounts, nil
	case SchemaCards:
		return SchemaCards, nil
	default:
		return "", fmt.Errorf("unknown schema %q (want customers, accounts or cards)", s)
	}
}

func (s Schema) dir() string {
	return "migrations/" + string(s)
}

func (s Schema) versionTable() string {
	return "goose_" + string(s) + "_version"
}

// Migrate runs a goose command (up, down, reset, status, version) for schema.
func Migrate(ctx context.Context, db *sql.DB, schema Schema, command string, log goose.Logger) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetTableName(schema.versionTable())
	if log != nil {
		goose.SetLogger(log)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, schema.dir())
	case "down":
		err = goose.DownContext(ctx, db, schema.dir())
	case "reset":
		err = goose.ResetContext(ctx, db, schema.dir())
	case "status":
		err = goose.StatusContext(ctx, db, schema.dir())
	case "version":
		err = goose.VersionContext(ctx, db, schema.dir())
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s for %s failed: %w", command, schema, err)
	}
	return nil
}

// OpenSQLDB exposes pool as a *sql.DB for goose.
func OpenSQLDB(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

// MigrateUp applies pending migrations for schema through the pgx pool.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, schema Schema, log goose.Logger) error {
	db := OpenSQLDB(pool)
	defer db.Close()
	return Migrate(ctx, db, schema, "up", log)
}
