// Package users provides PostgreSQL-backed storage of operator accounts.
package users

import (
	"context"

	"github.com/sterilpoint/protokol/internal/models"
)

type Repository interface {
	// Create stores a new user.
	Create(ctx context.Context, u *models.User) error

	// GetByUsername loads a user by username.
	// Returns common.ErrorNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
