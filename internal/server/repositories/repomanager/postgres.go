// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sterilpoint/protokol/internal/dbx"
	"github.com/sterilpoint/protokol/internal/server/migrations"
	"github.com/sterilpoint/protokol/internal/server/repositories/clients"
	"github.com/sterilpoint/protokol/internal/server/repositories/exports"
	"github.com/sterilpoint/protokol/internal/server/repositories/protocols"
	"github.com/sterilpoint/protokol/internal/server/repositories/tools"
	"github.com/sterilpoint/protokol/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Protocols(db dbx.DBTX) protocols.Repository {
	return protocols.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Clients(db dbx.DBTX) clients.Repository {
	return clients.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tools(db dbx.DBTX) tools.Repository {
	return tools.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Exports(db dbx.DBTX) exports.Repository {
	return exports.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
