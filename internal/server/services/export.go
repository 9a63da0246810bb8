package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/logging"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/server/repositories/exports"
	"github.com/sterilpoint/protokol/internal/server/repositories/repomanager"
)

// monthNamesPL labels export documents; the ledger itself only ever sees
// YYYY-MM keys.
var monthNamesPL = [12]string{
	"Styczeń", "Luty", "Marzec", "Kwiecień", "Maj", "Czerwiec",
	"Lipiec", "Sierpień", "Wrzesień", "Październik", "Listopad", "Grudzień",
}

// ExportService stores finalized protocol snapshots: the document goes to
// object storage, its metadata into the exports table.
type ExportService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	store ObjectStore
	log   logging.Logger
	now   func() time.Time
}

func NewExportService(db *sql.DB, repos repomanager.RepositoryManager, store ObjectStore, log logging.Logger) *ExportService {
	return &ExportService{db: db, repos: repos, store: store, log: log.With("module", "exports"), now: time.Now}
}

// Create persists a finalized snapshot. The snapshot name defaults to
// Protokol_<month-name>_<year>_<client-name> when the client did not set one.
func (s *ExportService) Create(ctx context.Context, snap *models.ExportSnapshot) (*exports.Record, error) {
	if snap.ClientID == "" || snap.Month == "" {
		return nil, fmt.Errorf("%w: client and month are required", common.ErrorValidation)
	}
	if len(snap.Entries) == 0 {
		return nil, fmt.Errorf("%w: snapshot has no entries", common.ErrorValidation)
	}

	client, err := s.repos.Clients(s.db).Get(ctx, snap.ClientID)
	if err != nil {
		return nil, err
	}

	snap.ID = uuid.NewString()
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now().UTC()
	}
	if snap.Name == "" {
		snap.Name = exportName(snap.Month, client.Name)
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	objectKey := "exports/" + snap.ID + ".json"
	if err := s.store.Put(ctx, objectKey, body, "application/json"); err != nil {
		return nil, fmt.Errorf("storing snapshot: %w", err)
	}

	rec := &exports.Record{
		ID:            snap.ID,
		ClientID:      snap.ClientID,
		Month:         snap.Month,
		Name:          snap.Name,
		ObjectKey:     objectKey,
		TotalPackages: snap.Totals.TotalPackages,
		Fingerprints:  snap.Fingerprints(),
		CreatedAt:     snap.CreatedAt,
	}
	if err := s.repos.Exports(s.db).Insert(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "export stored", "client", snap.ClientID, "month", snap.Month, "entries", len(snap.Entries))
	return rec, nil
}

// List returns snapshot metadata, optionally narrowed to one month.
func (s *ExportService) List(ctx context.Context, month string) ([]exports.Record, error) {
	return s.repos.Exports(s.db).List(ctx, month)
}

// DownloadURL hands out a short-lived presigned URL for a stored snapshot
// document, so clients fetch it straight from object storage.
func (s *ExportService) DownloadURL(ctx context.Context, id string) (string, error) {
	rec, err := s.repos.Exports(s.db).Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, rec.ObjectKey)
}

func exportName(month, clientName string) string {
	year, monthWord := month, month
	if parts := strings.SplitN(month, "-", 2); len(parts) == 2 {
		year = parts[0]
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 1 && m <= 12 {
			monthWord = monthNamesPL[m-1]
		}
	}
	return fmt.Sprintf("Protokol_%s_%s_%s", monthWord, year, clientName)
}
