// Package exports stores metadata of finalized export snapshots. The snapshot
// documents themselves live in object storage; rows here carry the lookup
// keys.
package exports

import (
	"context"
	"time"
)

// Record is one stored snapshot's metadata.
type Record struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"clientId"`
	Month         string    `json:"month"`
	Name          string    `json:"name"`
	ObjectKey     string    `json:"objectKey"`
	TotalPackages int       `json:"totalPackages"`
	Fingerprints  []string  `json:"fingerprints"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Repository interface {
	// Insert stores the metadata of a freshly written snapshot.
	Insert(ctx context.Context, rec *Record) error

	// Get returns one snapshot's metadata by id.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns snapshot metadata, optionally narrowed to one month,
	// newest first.
	List(ctx context.Context, month string) ([]Record, error)
}
