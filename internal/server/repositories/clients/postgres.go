package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/dbx"
	"github.com/sterilpoint/protokol/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Client, error) {
	query := `SELECT id, name, address, tax_identifier FROM clients ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.TaxIdentifier); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT id, name, address, tax_identifier FROM clients WHERE id=$1`
	var c models.Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Address, &c.TaxIdentifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}
