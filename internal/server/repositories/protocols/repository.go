// Package protocols provides PostgreSQL-backed storage for monthly protocol
// ledgers and their position-addressed entries.
package protocols

import (
	"context"

	"github.com/sterilpoint/protokol/internal/models"
)

// Repository is the storage contract for protocol ledgers. Entries are
// addressed by their insertion position inside one client+month ledger.
type Repository interface {
	// Ensure makes sure the protocol row for clientID+month exists.
	Ensure(ctx context.Context, clientID, month string) error

	// GetLedger loads the full ordered entry list with recomputed totals.
	// A missing protocol comes back as an empty ledger, not an error.
	GetLedger(ctx context.Context, clientID, month string) (*models.Protocol, error)

	// ListSummaries lists all protocols with entry counts and package totals.
	ListSummaries(ctx context.Context) ([]models.ProtocolSummary, error)

	// AppendEntry stores e at the end of the ledger and returns its position.
	AppendEntry(ctx context.Context, clientID, month string, e *models.Entry) (int, error)

	// GetEntry loads the entry at the given position.
	// Returns common.ErrorNotFound when the position does not exist.
	GetEntry(ctx context.Context, clientID, month string, index int) (*models.Entry, error)

	// UpdateEntry replaces the entry at the given position.
	UpdateEntry(ctx context.Context, clientID, month string, index int, e *models.Entry) error

	// DeleteEntry removes the entry at the given position and shifts every
	// higher position down by one.
	DeleteEntry(ctx context.Context, clientID, month string, index int) error

	// ListSignQueue returns entries pending in the given queue, optionally
	// narrowed to one month, joined with client names.
	ListSignQueue(ctx context.Context, queueType models.QueueType, month string) ([]models.SignQueueItem, error)
}
