package session

import (
	"context"
	"fmt"
	"time"

	"github.com/sterilpoint/protokol/internal/client/api"
	"github.com/sterilpoint/protokol/internal/client/cache"
	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/reconcile"
)

// Finalizer promotes a signed, queued selection of entries into an export
// snapshot. The gate is all-or-nothing: every selected entry must pass every
// check before anything is submitted or recorded.
type Finalizer struct {
	api   api.Client
	cache *cache.Cache
	now   func() time.Time
}

func NewFinalizer(apiClient api.Client, c *cache.Cache) *Finalizer {
	return &Finalizer{api: apiClient, cache: c, now: time.Now}
}

// check verifies the three gate conditions for one entry: a staff signature
// on either leg, membership in the chosen queue, and no prior finalization
// of the same content.
func (f *Finalizer) check(ctx context.Context, index int, e *models.Entry, queueType models.QueueType) error {
	if !e.Signatures.HasStaff() {
		return fmt.Errorf("entry %d: %w", index, common.ErrMissingStaffSignature)
	}

	if !e.Queue.Pending(queueType) {
		if _, active := e.Queue.Active(); active {
			return fmt.Errorf("entry %d: %w", index, common.ErrMixedQueueTypes)
		}
		return fmt.Errorf("entry %d: %w", index, common.ErrQueueMismatch)
	}

	finalized, err := f.cache.IsFinalized(ctx, e.Fingerprint())
	if err != nil {
		return err
	}
	if finalized {
		return fmt.Errorf("entry %d: %w", index, common.ErrAlreadyFinalized)
	}
	return nil
}

// Finalize gates the ledger's current selection against queueType, and on
// success reconciles every selected entry into an export snapshot, submits
// it, and records the fingerprints so the same content cannot be promoted
// twice. On any gate failure nothing is submitted or recorded.
func (f *Finalizer) Finalize(ctx context.Context, l *Ledger, queueType models.QueueType) (*api.ExportRecord, error) {
	if !queueType.Valid() {
		return nil, fmt.Errorf("%w: unknown queue type %q", common.ErrorValidation, queueType)
	}
	indices := l.Selected()
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no entries selected", common.ErrorValidation)
	}

	selected := make([]*models.Entry, 0, len(indices))
	for _, index := range indices {
		entry, err := l.Entry(index)
		if err != nil {
			return nil, err
		}
		if err := f.check(ctx, index, entry, queueType); err != nil {
			return nil, err
		}
		selected = append(selected, entry)
	}

	snap := &models.ExportSnapshot{
		ClientID:  l.ClientID(),
		Month:     l.Month(),
		CreatedAt: f.now().UTC(),
	}
	for _, entry := range selected {
		snap.Entries = append(snap.Entries, models.ExportEntry{
			Date:        entry.Date,
			ReturnDate:  entry.EffectiveReturnDate(),
			Service:     entry.Service,
			Comment:     entry.Comment,
			Rows:        reconcile.AlignEntry(entry),
			Fingerprint: entry.Fingerprint(),
		})
		snap.Totals.TotalPackages += entry.Packages
	}

	rec, err := f.api.CreateExport(ctx, snap)
	if err != nil {
		return nil, err
	}

	if err := f.cache.MarkFinalized(ctx, snap.ClientID, snap.Month, snap.Fingerprints()); err != nil {
		return nil, err
	}

	l.ClearSelection()
	return rec, nil
}
