// Package cache is the CLI's local SQLite store: in-progress entry drafts
// keyed by client and month, and the set of already-finalized entry
// fingerprints. Finalization state lives here, outside the entries
// themselves, so server-side records need no schema change to support it.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/sterilpoint/protokol/internal/client/cache/migrations"
	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/filex"
	"github.com/sterilpoint/protokol/internal/models"
)

type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at dsn and applies the
// embedded migrations.
func Open(ctx context.Context, dsn string) (*Cache, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// SaveDraft upserts the in-progress entry draft for one client and month.
func (c *Cache) SaveDraft(ctx context.Context, clientID, month string, e *models.Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	query := `INSERT INTO drafts (client_id, month, payload, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(client_id, month) DO UPDATE SET
			payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := c.db.ExecContext(ctx, query, clientID, month, string(payload)); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the stored draft, or common.ErrorNotFound when none
// exists for the key.
func (c *Cache) LoadDraft(ctx context.Context, clientID, month string) (*models.Entry, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT payload FROM drafts WHERE client_id = ? AND month = ?`, clientID, month)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	var e models.Entry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &e, nil
}

// ClearDraft removes the draft for one client and month. Clearing a missing
// draft is a no-op.
func (c *Cache) ClearDraft(ctx context.Context, clientID, month string) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM drafts WHERE client_id = ? AND month = ?`, clientID, month); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// MarkFinalized records the fingerprints of freshly finalized entries.
// Already-recorded fingerprints are left untouched.
func (c *Cache) MarkFinalized(ctx context.Context, clientID, month string, fingerprints []string) error {
	for _, fp := range fingerprints {
		if fp == "" {
			continue
		}
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO finalized (fingerprint, client_id, month) VALUES (?, ?, ?)
			 ON CONFLICT(fingerprint) DO NOTHING`, fp, clientID, month)
		if err != nil {
			return fmt.Errorf("failed to record fingerprint: %w", err)
		}
	}
	return nil
}

// IsFinalized reports whether the fingerprint was recorded before.
func (c *Cache) IsFinalized(ctx context.Context, fingerprint string) (bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM finalized WHERE fingerprint = ?`, fingerprint)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query fingerprint: %w", err)
	}
	return true, nil
}

// RemoveFingerprint forgets a recorded fingerprint, re-opening the entry for
// finalization. Removing an unknown fingerprint is a no-op.
func (c *Cache) RemoveFingerprint(ctx context.Context, fingerprint string) error {
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM finalized WHERE fingerprint = ?`, fingerprint); err != nil {
		return fmt.Errorf("failed to remove fingerprint: %w", err)
	}
	return nil
}
