package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/models"
)

func snapshot() *models.ExportSnapshot {
	return &models.ExportSnapshot{
		ClientID: "acme",
		Month:    "2024-03",
		Entries: []models.ExportEntry{{
			Date:        "2024-03-05",
			Service:     models.ServiceCourierSingle,
			Rows:        []models.ReportRow{{Name: "Clamp", TransferQty: 3, ReturnQty: 3}},
			Fingerprint: "abc123",
		}},
		Totals: models.Totals{TotalPackages: 2},
	}
}

func TestExportCreate_StoresDocumentAndMetadata(t *testing.T) {
	h := newHarness(t)
	svc := h.exportService()

	rec, err := svc.Create(context.Background(), snapshot())
	require.NoError(t, err)

	assert.Equal(t, "Protokol_Marzec_2024_ACME Dental", rec.Name)
	assert.Equal(t, []string{"abc123"}, rec.Fingerprints)
	assert.Equal(t, 2, rec.TotalPackages)
	assert.Equal(t, "exports/"+rec.ID+".json", rec.ObjectKey)

	body, ok := h.store.objects[rec.ObjectKey]
	require.True(t, ok, "snapshot document written to object storage")
	var stored models.ExportSnapshot
	require.NoError(t, json.Unmarshal(body, &stored))
	assert.Equal(t, "acme", stored.ClientID)
	assert.Len(t, stored.Entries, 1)

	list, err := svc.List(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rec.ID, list[0].ID)

	empty, err := svc.List(context.Background(), "2024-04")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExportDownloadURL(t *testing.T) {
	h := newHarness(t)
	svc := h.exportService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, snapshot())
	require.NoError(t, err)

	url, err := svc.DownloadURL(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/"+rec.ObjectKey, url)

	_, err = svc.DownloadURL(ctx, "ghost")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestExportCreate_Validation(t *testing.T) {
	h := newHarness(t)
	svc := h.exportService()
	ctx := context.Background()

	snap := snapshot()
	snap.Entries = nil
	_, err := svc.Create(ctx, snap)
	assert.True(t, errors.Is(err, common.ErrorValidation))

	snap = snapshot()
	snap.ClientID = ""
	_, err = svc.Create(ctx, snap)
	assert.True(t, errors.Is(err, common.ErrorValidation))

	snap = snapshot()
	snap.ClientID = "ghost"
	_, err = svc.Create(ctx, snap)
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}

func TestExportCreate_StoreFailureAborts(t *testing.T) {
	h := newHarness(t)
	h.store.putErr = errors.New("s3 down")
	svc := h.exportService()

	_, err := svc.Create(context.Background(), snapshot())
	require.Error(t, err)
	assert.Empty(t, h.repos.exportRows, "no metadata row without a stored document")
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "Protokol_Styczeń_2025_X", exportName("2025-01", "X"))
	assert.Equal(t, "Protokol_Grudzień_2024_Y", exportName("2024-12", "Y"))
	assert.Equal(t, "Protokol_weird_weird_Z", exportName("weird", "Z"))
}
