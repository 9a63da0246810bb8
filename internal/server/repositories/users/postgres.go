package users

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

func (r *PostgresRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.PasswordHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username=$1`
	var u models.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &u, nil
}
