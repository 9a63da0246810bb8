package exports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) error {
	fingerprints, err := json.Marshal(rec.Fingerprints)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO exports (id, client_id, month, name, object_key, total_packages, fingerprints, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.ClientID, rec.Month, rec.Name, rec.ObjectKey,
		rec.TotalPackages, fingerprints, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	query := `
		SELECT id, client_id, month, name, object_key, total_packages, fingerprints, created_at
		FROM exports
		WHERE id = $1`
	var rec Record
	var fingerprints []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.ClientID, &rec.Month,
		&rec.Name, &rec.ObjectKey, &rec.TotalPackages, &fingerprints, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(fingerprints) > 0 {
		if err := json.Unmarshal(fingerprints, &rec.Fingerprints); err != nil {
			return nil, fmt.Errorf("fingerprints: %w", err)
		}
	}
	return &rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, month string) ([]Record, error) {
	query := `
		SELECT id, client_id, month, name, object_key, total_packages, fingerprints, created_at
		FROM exports
		WHERE ($1 = '' OR month = $1)
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var rec Record
		var fingerprints []byte
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Month, &rec.Name,
			&rec.ObjectKey, &rec.TotalPackages, &fingerprints, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(fingerprints) > 0 {
			if err := json.Unmarshal(fingerprints, &rec.Fingerprints); err != nil {
				return nil, fmt.Errorf("fingerprints: %w", err)
			}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
