package repomanager

import (
	"context"
	"database/sql"

	"github.com/sterilpoint/protokol/internal/dbx"
	"github.com/sterilpoint/protokol/internal/server/repositories/clients"
	"github.com/sterilpoint/protokol/internal/server/repositories/exports"
	"github.com/sterilpoint/protokol/internal/server/repositories/protocols"
	"github.com/sterilpoint/protokol/internal/server/repositories/tools"
	"github.com/sterilpoint/protokol/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX and owns schema
// migrations. Services pass either the pooled *sql.DB or a transaction
// handle, so one repository implementation serves both paths.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Protocols(db dbx.DBTX) protocols.Repository
	Clients(db dbx.DBTX) clients.Repository
	Tools(db dbx.DBTX) tools.Repository
	Users(db dbx.DBTX) users.Repository
	Exports(db dbx.DBTX) exports.Repository
}
