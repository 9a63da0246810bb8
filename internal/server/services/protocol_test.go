package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

func draftEntry() *models.Entry {
	return &models.Entry{
		Date:     "2024-03-05",
		Tools:    []models.Tool{{Name: "Clamp", Count: 3}},
		Packages: 2,
		Service:  models.ServiceCourierSingle,
	}
}

func TestCreateEntry_AppendsAndRefreshes(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, protocol, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)
	assert.Equal(t, 0, index)
	require.Len(t, protocol.Entries, 1)
	assert.Equal(t, 2, protocol.Totals.TotalPackages)

	index, protocol, err = svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Equal(t, 4, protocol.Totals.TotalPackages)
}

func TestCreateEntry_Validation(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	e := draftEntry()
	e.Packages = 0
	_, _, err := svc.CreateEntry(ctx, "acme", "2024-03", e)
	assert.True(t, errors.Is(err, common.ErrorValidation))

	e = draftEntry()
	e.Date = "2024-04-05"
	_, _, err = svc.CreateEntry(ctx, "acme", "2024-03", e)
	require.True(t, errors.Is(err, common.ErrorValidation))
	assert.Contains(t, err.Error(), "outside month")

	_, _, err = svc.CreateEntry(ctx, "ghost", "2024-03", draftEntry())
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestCreateEntry_NormalizesExplicitWeekendReturnDate(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()

	e := draftEntry()
	e.ReturnDate = "2024-03-09" // Saturday
	index, protocol, err := svc.CreateEntry(context.Background(), "acme", "2024-03", e)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", protocol.Entries[index].ReturnDate)
}

func TestPatchEntry_ReturnLeg(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)

	returnDate := "2024-03-10" // Sunday
	returnTools := []models.Tool{{Name: "Clamp", Count: 2}}
	returnPackages := 1
	entry, _, err := svc.PatchEntry(ctx, "acme", "2024-03", index, models.EntryPatch{
		ReturnDate:     &returnDate,
		ReturnTools:    &returnTools,
		ReturnPackages: &returnPackages,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", entry.ReturnDate, "weekend normalized to Monday")
	assert.Equal(t, returnTools, entry.ReturnTools)
	assert.Equal(t, 1, entry.ReturnPackages)
}

func TestPatchEntry_DateMustStayInMonth(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)

	badDate := "2024-04-01"
	_, _, err = svc.PatchEntry(ctx, "acme", "2024-03", index, models.EntryPatch{Date: &badDate})
	assert.True(t, errors.Is(err, common.ErrorValidation))

	longComment := strings.Repeat("x", common.CommentMaxLength+1)
	_, _, err = svc.PatchEntry(ctx, "acme", "2024-03", index, models.EntryPatch{Comment: &longComment})
	assert.True(t, errors.Is(err, common.ErrorValidation))

	_, _, err = svc.PatchEntry(ctx, "acme", "2024-03", 9, models.EntryPatch{})
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestDeleteEntry_RemovesSignatureObjects(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
		require.NoError(t, err)
	}
	_, err := svc.Sign(ctx, "acme", "2024-03", 1, SignRequest{
		Leg:    models.LegTransfer,
		Client: []byte("png-client"),
	})
	require.NoError(t, err)
	require.Len(t, h.store.objects, 1)

	protocol, err := svc.DeleteEntry(ctx, "acme", "2024-03", 1)
	require.NoError(t, err)
	assert.Len(t, protocol.Entries, 2)
	assert.Empty(t, h.store.objects, "stored signature image removed with the entry")
}

func TestDeleteEntry_ShiftSharesTransaction(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
		require.NoError(t, err)
	}

	h.repos.protocolHandles = nil
	protocol, err := svc.DeleteEntry(ctx, "acme", "2024-03", 0)
	require.NoError(t, err)
	require.Len(t, protocol.Entries, 2)

	var inTx bool
	for _, handle := range h.repos.protocolHandles {
		if _, ok := handle.(*sql.Tx); ok {
			inTx = true
		}
	}
	assert.True(t, inTx, "row delete and position shift run on one transaction")

	rows, err := h.db.Query(`SELECT position FROM protocol_entries
		WHERE client_id='acme' AND month='2024-03' ORDER BY position`)
	require.NoError(t, err)
	defer rows.Close()
	var positions []int
	for rows.Next() {
		var p int
		require.NoError(t, rows.Scan(&p))
		positions = append(positions, p)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{0, 1}, positions, "positions stay contiguous after delete")
}

func TestSetQueue_MutualExclusionAndPlannedDate(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)

	entry, err := svc.SetQueue(ctx, "acme", "2024-03", index, models.QueueCourier, true, "2024-03-07")
	require.NoError(t, err)
	assert.True(t, entry.Queue.CourierPending)
	assert.Equal(t, "2024-03-07", entry.Queue.CourierPlannedDate)

	entry, err = svc.SetQueue(ctx, "acme", "2024-03", index, models.QueuePoint, true, "")
	require.NoError(t, err)
	assert.False(t, entry.Queue.CourierPending)
	assert.True(t, entry.Queue.PointPending)
	assert.Empty(t, entry.Queue.CourierPlannedDate)

	_, err = svc.SetQueue(ctx, "acme", "2024-03", index, "drone", true, "")
	assert.True(t, errors.Is(err, common.ErrorValidation))

	_, err = svc.SetQueue(ctx, "acme", "2024-03", index, models.QueueCourier, true, "someday")
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestSign_AdditiveWrites(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)

	entry, err := svc.Sign(ctx, "acme", "2024-03", index, SignRequest{
		Leg:    models.LegTransfer,
		Client: []byte("client-png"),
	})
	require.NoError(t, err)
	clientKey := entry.Signatures.Transfer.Client
	require.NotEmpty(t, clientKey)
	assert.True(t, strings.HasPrefix(clientKey, "signatures/acme/2024-03/transfer_client_"))
	assert.Empty(t, entry.Signatures.Transfer.Staff, "omitted slot untouched")

	entry, err = svc.Sign(ctx, "acme", "2024-03", index, SignRequest{
		Leg:   models.LegTransfer,
		Staff: []byte("staff-png"),
	})
	require.NoError(t, err)
	assert.Equal(t, clientKey, entry.Signatures.Transfer.Client, "previous slot survives")
	assert.NotEmpty(t, entry.Signatures.Transfer.Staff)

	_, err = svc.Sign(ctx, "acme", "2024-03", index, SignRequest{Leg: models.LegTransfer})
	assert.True(t, errors.Is(err, common.ErrorValidation), "empty request rejected")

	_, err = svc.Sign(ctx, "acme", "2024-03", index, SignRequest{Leg: "sideways", Client: []byte("x")})
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestSign_DefaultStaffAndQueueAutoClear(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)
	_, err = svc.SetQueue(ctx, "acme", "2024-03", index, models.QueueCourier, true, "")
	require.NoError(t, err)

	entry, err := svc.Sign(ctx, "acme", "2024-03", index, SignRequest{
		Leg:             models.LegTransfer,
		Client:          []byte("c1"),
		UseDefaultStaff: true,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultStaffSignatureKey, entry.Signatures.Transfer.Staff)
	assert.True(t, entry.Queue.CourierPending, "still pending while the return leg is unsigned")

	entry, err = svc.Sign(ctx, "acme", "2024-03", index, SignRequest{
		Leg:             models.LegReturn,
		Client:          []byte("c2"),
		UseDefaultStaff: true,
	})
	require.NoError(t, err)
	assert.True(t, entry.Signatures.Complete())
	assert.False(t, entry.Queue.CourierPending, "fully signed entries leave the queue")
	assert.False(t, entry.Queue.PointPending)
}

func TestDeleteSignature(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	index, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
	require.NoError(t, err)
	_, err = svc.Sign(ctx, "acme", "2024-03", index, SignRequest{
		Leg:             models.LegTransfer,
		Client:          []byte("c1"),
		UseDefaultStaff: true,
	})
	require.NoError(t, err)

	entry, err := svc.DeleteSignature(ctx, "acme", "2024-03", index, models.LegTransfer, models.PartyClient)
	require.NoError(t, err)
	assert.Empty(t, entry.Signatures.Transfer.Client)
	assert.Len(t, h.store.deleted, 1)

	entry, err = svc.DeleteSignature(ctx, "acme", "2024-03", index, models.LegTransfer, models.PartyStaff)
	require.NoError(t, err)
	assert.Empty(t, entry.Signatures.Transfer.Staff)
	assert.Len(t, h.store.deleted, 1, "the shared default image is never deleted from storage")

	// clearing an already empty slot is a no-op
	_, err = svc.DeleteSignature(ctx, "acme", "2024-03", index, models.LegTransfer, models.PartyClient)
	require.NoError(t, err)
}

func TestSignQueue(t *testing.T) {
	h := newHarness(t)
	svc := h.protocolService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, err := svc.CreateEntry(ctx, "acme", "2024-03", draftEntry())
		require.NoError(t, err)
	}
	_, err := svc.SetQueue(ctx, "acme", "2024-03", 1, models.QueueCourier, true, "2024-03-07")
	require.NoError(t, err)

	items, err := svc.SignQueue(ctx, models.QueueCourier, "2024-03")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Index)
	assert.Equal(t, "2024-03-07", items[0].PlannedDate)

	_, err = svc.SignQueue(ctx, "drone", "")
	assert.True(t, errors.Is(err, common.ErrorValidation))
}
