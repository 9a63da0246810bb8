// Package clients provides read-only access to the client directory.
package clients

import (
	"context"

	"github.com/sterilpoint/protokol/internal/models"
)

type Repository interface {
	// List returns all clients ordered by name.
	List(ctx context.Context) ([]models.Client, error)

	// Get loads one client by its slug.
	// Returns common.ErrorNotFound when the slug is unknown.
	Get(ctx context.Context, id string) (*models.Client, error)
}
