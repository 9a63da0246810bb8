// Package session holds the client-side working state of one protocol
// ledger: the mirrored month of entries, the operator's selection, and the
// finalization gate. All mutations go through the server first; local state
// is only ever replaced with what the server returned, so a failed call
// leaves the mirror untouched.
package session

import (
	"context"
	"fmt"
	"sort"

	"github.com/sterilpoint/protokol/internal/client/api"
	"github.com/sterilpoint/protokol/internal/client/cache"
	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/timex"
	"github.com/sterilpoint/protokol/internal/tooldict"
)

// Ledger mirrors one client+month of entries. Entries are addressed by their
// insertion-order index; the sorted-by-date view is for display only.
type Ledger struct {
	api   api.Client
	cache *cache.Cache
	dict  *tooldict.Dictionary

	clientID string
	month    string

	protocol  models.Protocol
	selection map[int]struct{}
}

// OpenLedger fetches the month from the server and returns a session over
// it. The dictionary may be nil when no tool canonicalization is wanted.
func OpenLedger(ctx context.Context, apiClient api.Client, c *cache.Cache, dict *tooldict.Dictionary, clientID, month string) (*Ledger, error) {
	l := &Ledger{
		api:       apiClient,
		cache:     c,
		dict:      dict,
		clientID:  clientID,
		month:     month,
		selection: map[int]struct{}{},
	}
	if err := l.Refresh(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) ClientID() string { return l.clientID }
func (l *Ledger) Month() string    { return l.month }

func (l *Ledger) Len() int {
	return len(l.protocol.Entries)
}

func (l *Ledger) Totals() models.Totals {
	return l.protocol.Totals
}

// Entry returns the entry at the given insertion-order index.
func (l *Ledger) Entry(index int) (*models.Entry, error) {
	if index < 0 || index >= len(l.protocol.Entries) {
		return nil, fmt.Errorf("%w: no entry at index %d", common.ErrorNotFound, index)
	}
	return &l.protocol.Entries[index], nil
}

// Refresh re-fetches the month and replaces the local mirror wholesale.
// Selection indices that fell off the end are dropped.
func (l *Ledger) Refresh(ctx context.Context) error {
	protocol, err := l.api.GetLedger(ctx, l.clientID, l.month)
	if err != nil {
		return err
	}
	l.replace(protocol)
	return nil
}

func (l *Ledger) replace(p *models.Protocol) {
	l.protocol = *p
	for index := range l.selection {
		if index >= len(l.protocol.Entries) {
			delete(l.selection, index)
		}
	}
}

func (l *Ledger) canonicalize(tools []models.Tool) []models.Tool {
	if l.dict == nil {
		return tools
	}
	return l.dict.CanonicalizeTools(tools)
}

// Create validates the draft locally, appends it on the server and returns
// the new index. Validation failures never reach the server.
func (l *Ledger) Create(ctx context.Context, draft *models.Entry) (int, error) {
	e := draft.Clone()
	e.Tools = l.canonicalize(e.Tools)
	e.Normalize()
	if err := e.ValidateForCreate(); err != nil {
		return 0, err
	}

	index, protocol, err := l.api.CreateEntry(ctx, l.clientID, l.month, &e)
	if err != nil {
		return 0, err
	}
	l.replace(protocol)
	return index, nil
}

// Update merges a partial patch into the entry at index.
func (l *Ledger) Update(ctx context.Context, index int, patch models.EntryPatch) error {
	if patch.Tools != nil {
		canonical := l.canonicalize(*patch.Tools)
		patch.Tools = &canonical
	}
	if patch.ReturnTools != nil {
		canonical := l.canonicalize(*patch.ReturnTools)
		patch.ReturnTools = &canonical
	}

	_, protocol, err := l.api.PatchEntry(ctx, l.clientID, l.month, index, patch)
	if err != nil {
		return err
	}
	l.replace(protocol)
	return nil
}

// Remove deletes the entry at index. Its recorded fingerprint, if any, is
// forgotten, and selection indices above it shift down by one.
func (l *Ledger) Remove(ctx context.Context, index int) error {
	entry, err := l.Entry(index)
	if err != nil {
		return err
	}
	fingerprint := entry.Fingerprint()

	protocol, err := l.api.DeleteEntry(ctx, l.clientID, l.month, index)
	if err != nil {
		return err
	}

	// The server delete already happened, so the mirror must follow it even
	// when forgetting the fingerprint fails.
	l.shiftSelection(index)
	l.replace(protocol)

	if l.cache != nil {
		if err := l.cache.RemoveFingerprint(ctx, fingerprint); err != nil {
			return err
		}
	}
	return nil
}

// shiftSelection drops index and moves every selected index above it down
// by one, keeping the selection aligned with the shrunken list.
func (l *Ledger) shiftSelection(removed int) {
	shifted := make(map[int]struct{}, len(l.selection))
	for index := range l.selection {
		switch {
		case index < removed:
			shifted[index] = struct{}{}
		case index > removed:
			shifted[index-1] = struct{}{}
		}
	}
	l.selection = shifted
}

// RemoveSelected deletes every selected entry in descending index order so
// the remaining indices stay valid as the list shrinks. A failure on one
// entry does not stop the rest; per-index outcomes are returned.
func (l *Ledger) RemoveSelected(ctx context.Context) map[int]error {
	indices := l.Selected()
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	outcome := make(map[int]error, len(indices))
	for _, index := range indices {
		outcome[index] = l.Remove(ctx, index)
	}
	return outcome
}

// Duplicate returns a fresh draft copied from the entry at index: tools,
// packages, service and comment only. Dates, signatures and queue state are
// not copied. The draft is not persisted.
func (l *Ledger) Duplicate(index int) (*models.Entry, error) {
	entry, err := l.Entry(index)
	if err != nil {
		return nil, err
	}
	draft := entry.Duplicate()
	return &draft, nil
}

// IndexedEntry pairs an entry with its insertion-order index for the sorted
// display view.
type IndexedEntry struct {
	Index int
	Entry models.Entry
}

// SortedView lists entries ascending by transfer date. Entries whose date
// does not parse are excluded from the view but remain index-addressable.
func (l *Ledger) SortedView() []IndexedEntry {
	view := make([]IndexedEntry, 0, len(l.protocol.Entries))
	for i := range l.protocol.Entries {
		if _, err := timex.ParseDate(l.protocol.Entries[i].Date); err != nil {
			continue
		}
		view = append(view, IndexedEntry{Index: i, Entry: l.protocol.Entries[i]})
	}
	sort.SliceStable(view, func(a, b int) bool {
		return view[a].Entry.Date < view[b].Entry.Date
	})
	return view
}

// Select marks the entry at index as part of the working selection.
func (l *Ledger) Select(index int) error {
	if index < 0 || index >= len(l.protocol.Entries) {
		return fmt.Errorf("%w: no entry at index %d", common.ErrorNotFound, index)
	}
	l.selection[index] = struct{}{}
	return nil
}

func (l *Ledger) Deselect(index int) {
	delete(l.selection, index)
}

func (l *Ledger) ClearSelection() {
	l.selection = map[int]struct{}{}
}

// Selected returns the selected indices in ascending order.
func (l *Ledger) Selected() []int {
	indices := make([]int, 0, len(l.selection))
	for index := range l.selection {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

func (l *Ledger) IsSelected(index int) bool {
	_, ok := l.selection[index]
	return ok
}

// SetQueueSelected routes every selected entry into the given queue.
// Re-applying the current type is idempotent; switching types moves all
// selected entries uniformly.
func (l *Ledger) SetQueueSelected(ctx context.Context, queueType models.QueueType, plannedDate string) error {
	for _, index := range l.Selected() {
		if _, err := l.api.SetQueue(ctx, l.clientID, l.month, index, queueType, true, plannedDate); err != nil {
			return fmt.Errorf("queueing entry %d: %w", index, err)
		}
	}
	return l.Refresh(ctx)
}

// ClearQueue lowers the entry's pending flag, whichever queue it is in.
func (l *Ledger) ClearQueue(ctx context.Context, index int) error {
	entry, err := l.Entry(index)
	if err != nil {
		return err
	}
	active, ok := entry.Queue.Active()
	if !ok {
		return nil
	}
	if _, err := l.api.SetQueue(ctx, l.clientID, l.month, index, active, false, ""); err != nil {
		return err
	}
	return l.Refresh(ctx)
}

// Sign writes the non-empty slots of one leg. Nil images are omitted and
// leave the server-side slot untouched.
func (l *Ledger) Sign(ctx context.Context, index int, leg models.Leg, clientPNG, staffPNG []byte, useDefaultStaff bool) error {
	_, err := l.api.Sign(ctx, l.clientID, l.month, index, api.SignPayload{
		Leg:             leg,
		Client:          clientPNG,
		Staff:           staffPNG,
		UseDefaultStaff: useDefaultStaff,
	})
	if err != nil {
		return err
	}
	return l.Refresh(ctx)
}

// DeleteSignature explicitly clears one stored slot.
func (l *Ledger) DeleteSignature(ctx context.Context, index int, leg models.Leg, who models.Party) error {
	if _, err := l.api.DeleteSignature(ctx, l.clientID, l.month, index, leg, who); err != nil {
		return err
	}
	return l.Refresh(ctx)
}
