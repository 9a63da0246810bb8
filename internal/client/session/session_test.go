package session

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sterilpoint/protokol/internal/client/api"
	"github.com/sterilpoint/protokol/internal/client/cache"
	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

// fakeAPI emulates the server's ledger semantics in memory: append with
// index return, delete with position shift, queue mutual exclusion and
// additive signing.
type fakeAPI struct {
	protocol    models.Protocol
	exports     []models.ExportSnapshot
	createCalls int
	deleteErrs  map[int]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		protocol:   models.Protocol{ClientID: "acme", Month: "2024-03"},
		deleteErrs: map[int]error{},
	}
}

func (f *fakeAPI) snapshot() *models.Protocol {
	p := models.Protocol{ClientID: f.protocol.ClientID, Month: f.protocol.Month}
	for i := range f.protocol.Entries {
		p.Entries = append(p.Entries, f.protocol.Entries[i].Clone())
	}
	p.RecalcTotals()
	return &p
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) error { return nil }

func (f *fakeAPI) ListProtocols(ctx context.Context) ([]models.ProtocolSummary, error) {
	return nil, nil
}

func (f *fakeAPI) GetLedger(ctx context.Context, clientID, month string) (*models.Protocol, error) {
	return f.snapshot(), nil
}

func (f *fakeAPI) CreateEntry(ctx context.Context, clientID, month string, e *models.Entry) (int, *models.Protocol, error) {
	f.createCalls++
	entry := e.Clone()
	entry.Normalize()
	f.protocol.Entries = append(f.protocol.Entries, entry)
	return len(f.protocol.Entries) - 1, f.snapshot(), nil
}

func (f *fakeAPI) PatchEntry(ctx context.Context, clientID, month string, index int, patch models.EntryPatch) (*models.Entry, *models.Protocol, error) {
	if index < 0 || index >= len(f.protocol.Entries) {
		return nil, nil, common.ErrorNotFound
	}
	patch.Apply(&f.protocol.Entries[index])
	entry := f.protocol.Entries[index].Clone()
	return &entry, f.snapshot(), nil
}

func (f *fakeAPI) DeleteEntry(ctx context.Context, clientID, month string, index int) (*models.Protocol, error) {
	if err := f.deleteErrs[index]; err != nil {
		return nil, err
	}
	if index < 0 || index >= len(f.protocol.Entries) {
		return nil, common.ErrorNotFound
	}
	f.protocol.Entries = append(f.protocol.Entries[:index], f.protocol.Entries[index+1:]...)
	return f.snapshot(), nil
}

func (f *fakeAPI) SetQueue(ctx context.Context, clientID, month string, index int, queueType models.QueueType, pending bool, plannedDate string) (*models.Entry, error) {
	if index < 0 || index >= len(f.protocol.Entries) {
		return nil, common.ErrorNotFound
	}
	e := &f.protocol.Entries[index]
	e.Queue.Set(queueType, pending)
	if queueType == models.QueueCourier && pending {
		e.Queue.CourierPlannedDate = plannedDate
	}
	entry := e.Clone()
	return &entry, nil
}

func (f *fakeAPI) Sign(ctx context.Context, clientID, month string, index int, payload api.SignPayload) (*models.Entry, error) {
	if index < 0 || index >= len(f.protocol.Entries) {
		return nil, common.ErrorNotFound
	}
	e := &f.protocol.Entries[index]
	leg := e.Signatures.Leg(payload.Leg)
	if len(payload.Client) > 0 {
		leg.Client = fmt.Sprintf("sig/%s_client", payload.Leg)
	}
	if payload.UseDefaultStaff {
		leg.Staff = "sig/_static/staff-default"
	} else if len(payload.Staff) > 0 {
		leg.Staff = fmt.Sprintf("sig/%s_staff", payload.Leg)
	}
	if e.Signatures.Complete() {
		e.Queue.Clear()
	}
	entry := e.Clone()
	return &entry, nil
}

func (f *fakeAPI) DeleteSignature(ctx context.Context, clientID, month string, index int, leg models.Leg, who models.Party) (*models.Entry, error) {
	if index < 0 || index >= len(f.protocol.Entries) {
		return nil, common.ErrorNotFound
	}
	e := &f.protocol.Entries[index]
	e.Signatures.Leg(leg).Set(who, "")
	entry := e.Clone()
	return &entry, nil
}

func (f *fakeAPI) SignQueue(ctx context.Context, queueType models.QueueType, month string) ([]models.SignQueueItem, error) {
	var items []models.SignQueueItem
	for i := range f.protocol.Entries {
		if f.protocol.Entries[i].Queue.Pending(queueType) {
			items = append(items, models.SignQueueItem{
				ClientID: f.protocol.ClientID,
				Month:    f.protocol.Month,
				Index:    i,
				Type:     queueType,
				Entry:    f.protocol.Entries[i].Clone(),
			})
		}
	}
	return items, nil
}

func (f *fakeAPI) ListClients(ctx context.Context) ([]models.Client, error) {
	return []models.Client{{ID: "acme", Name: "ACME Dental"}}, nil
}

func (f *fakeAPI) ListToolNames(ctx context.Context) ([]string, error) {
	return []string{"Clamp", "Scaler"}, nil
}

func (f *fakeAPI) CreateExport(ctx context.Context, snap *models.ExportSnapshot) (*api.ExportRecord, error) {
	f.exports = append(f.exports, *snap)
	return &api.ExportRecord{
		ID:            fmt.Sprintf("exp-%d", len(f.exports)),
		ClientID:      snap.ClientID,
		Month:         snap.Month,
		TotalPackages: snap.Totals.TotalPackages,
		Fingerprints:  snap.Fingerprints(),
	}, nil
}

func (f *fakeAPI) ListExports(ctx context.Context, month string) ([]api.ExportRecord, error) {
	return nil, nil
}

func (f *fakeAPI) ExportURL(ctx context.Context, id string) (string, error) {
	return "https://signed.example/exports/" + id + ".json", nil
}

func openTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func openTestLedger(t *testing.T, f *fakeAPI) (*Ledger, *cache.Cache) {
	t.Helper()
	c := openTestCache(t)
	l, err := OpenLedger(context.Background(), f, c, nil, "acme", "2024-03")
	require.NoError(t, err)
	return l, c
}

func draft(date string) *models.Entry {
	return &models.Entry{
		Date:     date,
		Tools:    []models.Tool{{Name: "Clamp", Count: 3}},
		Packages: 2,
		Service:  models.ServiceCourierSingle,
	}
}
