// Package dbx carries the two database primitives every repository builds
// on: the DBTX handle and transactional execution.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the query surface a repository needs. *sql.DB and *sql.Tx both
// provide it, so the same repository code runs standalone or inside a
// transaction opened by a service.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction on db. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics; a panic is
// re-raised after the rollback.
//
// Services use it to make multi-statement writes land together:
//
//	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return s.repos.Protocols(tx).DeleteEntry(ctx, clientID, month, index)
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}
