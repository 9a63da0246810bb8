// Package services implements the server-side use cases of the protocol
// ledger: entry CRUD with validation, queue routing, signature persistence
// and export snapshots.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/dbx"
	"github.com/sterilpoint/protokol/internal/logging"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/server/repositories/repomanager"
	"github.com/sterilpoint/protokol/internal/timex"
)

// DefaultStaffSignatureKey is the shared staff signature image an operator
// can attach instead of drawing a fresh one. The object is provisioned out
// of band and never deleted through the API.
const DefaultStaffSignatureKey = "signatures/_static/staff-default.png"

// ProtocolService owns the month ledgers. All entry addressing is by
// insertion position inside one client+month ledger.
type ProtocolService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	store ObjectStore
	log   logging.Logger
}

func NewProtocolService(db *sql.DB, repos repomanager.RepositoryManager, store ObjectStore, log logging.Logger) *ProtocolService {
	return &ProtocolService{db: db, repos: repos, store: store, log: log.With("module", "protocols")}
}

func (s *ProtocolService) ListProtocols(ctx context.Context) ([]models.ProtocolSummary, error) {
	return s.repos.Protocols(s.db).ListSummaries(ctx)
}

func (s *ProtocolService) GetLedger(ctx context.Context, clientID, month string) (*models.Protocol, error) {
	if _, err := s.repos.Clients(s.db).Get(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repos.Protocols(s.db).GetLedger(ctx, clientID, month)
}

func (s *ProtocolService) ListClients(ctx context.Context) ([]models.Client, error) {
	return s.repos.Clients(s.db).List(ctx)
}

func (s *ProtocolService) ListToolNames(ctx context.Context) ([]string, error) {
	return s.repos.Tools(s.db).ListNames(ctx)
}

// CreateEntry validates and appends an entry to the ledger, returning its
// position and the refreshed protocol.
func (s *ProtocolService) CreateEntry(ctx context.Context, clientID, month string, e *models.Entry) (int, *models.Protocol, error) {
	e.Normalize()
	if err := e.ValidateForCreate(); err != nil {
		return 0, nil, err
	}
	if err := checkDateInMonth(e.Date, month); err != nil {
		return 0, nil, err
	}
	if err := normalizeReturnDate(e); err != nil {
		return 0, nil, err
	}
	if _, err := s.repos.Clients(s.db).Get(ctx, clientID); err != nil {
		return 0, nil, err
	}

	var position int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Protocols(tx)
		if err := repo.Ensure(ctx, clientID, month); err != nil {
			return err
		}
		var err error
		position, err = repo.AppendEntry(ctx, clientID, month, e)
		return err
	})
	if err != nil {
		return 0, nil, fmt.Errorf("error creating entry: %w", err)
	}

	s.log.Info(ctx, "entry created", "client", clientID, "month", month, "index", position)

	protocol, err := s.repos.Protocols(s.db).GetLedger(ctx, clientID, month)
	if err != nil {
		return 0, nil, err
	}
	return position, protocol, nil
}

// PatchEntry merges a partial update into the entry at index. Patched dates
// must stay within the ledger's month; a patched return date is normalized
// to the next business day when it lands on a weekend.
func (s *ProtocolService) PatchEntry(ctx context.Context, clientID, month string, index int, patch models.EntryPatch) (*models.Entry, *models.Protocol, error) {
	repo := s.repos.Protocols(s.db)
	e, err := repo.GetEntry(ctx, clientID, month, index)
	if err != nil {
		return nil, nil, err
	}

	patch.Apply(e)

	if patch.Date != nil {
		if err := checkDateInMonth(e.Date, month); err != nil {
			return nil, nil, err
		}
	}
	if len(e.Comment) > common.CommentMaxLength {
		return nil, nil, fmt.Errorf("%w: comment exceeds %d characters", common.ErrorValidation, common.CommentMaxLength)
	}
	if patch.ReturnDate != nil {
		if err := normalizeReturnDate(e); err != nil {
			return nil, nil, err
		}
	}

	if err := repo.UpdateEntry(ctx, clientID, month, index, e); err != nil {
		return nil, nil, err
	}

	protocol, err := repo.GetLedger(ctx, clientID, month)
	if err != nil {
		return nil, nil, err
	}
	return e, protocol, nil
}

// DeleteEntry removes the entry at index, shifting higher positions down,
// and returns the refreshed protocol. Stored signature images of the entry
// are deleted best-effort.
func (s *ProtocolService) DeleteEntry(ctx context.Context, clientID, month string, index int) (*models.Protocol, error) {
	repo := s.repos.Protocols(s.db)
	e, err := repo.GetEntry(ctx, clientID, month, index)
	if err != nil {
		return nil, err
	}
	// The row delete and the position shift of the higher rows must land
	// together, same as the append path.
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Protocols(tx).DeleteEntry(ctx, clientID, month, index)
	})
	if err != nil {
		return nil, err
	}

	for _, key := range []string{
		e.Signatures.Transfer.Client, e.Signatures.Transfer.Staff,
		e.Signatures.Return.Client, e.Signatures.Return.Staff,
	} {
		s.deleteSignatureObject(ctx, key)
	}

	s.log.Info(ctx, "entry deleted", "client", clientID, "month", month, "index", index)
	return repo.GetLedger(ctx, clientID, month)
}

// SetQueue raises or lowers one pending flag of the entry at index. Raising
// a flag lowers the other one. The optional planned date only applies to the
// courier queue.
func (s *ProtocolService) SetQueue(ctx context.Context, clientID, month string, index int, queueType models.QueueType, pending bool, plannedDate string) (*models.Entry, error) {
	if !queueType.Valid() {
		return nil, fmt.Errorf("%w: unknown queue type %q", common.ErrorValidation, queueType)
	}
	if plannedDate != "" {
		if _, err := timex.ParseDate(plannedDate); err != nil {
			return nil, fmt.Errorf("%w: planned date: %v", common.ErrorValidation, err)
		}
	}

	repo := s.repos.Protocols(s.db)
	e, err := repo.GetEntry(ctx, clientID, month, index)
	if err != nil {
		return nil, err
	}

	e.Queue.Set(queueType, pending)
	if queueType == models.QueueCourier && pending {
		e.Queue.CourierPlannedDate = plannedDate
	}

	if err := repo.UpdateEntry(ctx, clientID, month, index, e); err != nil {
		return nil, err
	}
	return e, nil
}

// SignRequest carries the signature images for one leg. Nil slots are left
// untouched server-side; writes are additive. UseDefaultStaff attaches the
// shared default staff image instead of a drawn one.
type SignRequest struct {
	Leg             models.Leg
	Client          []byte
	Staff           []byte
	UseDefaultStaff bool
}

// Sign stores the provided signature images and attaches their object keys
// to the entry. When all four slots are filled afterwards, the entry's queue
// flags are cleared: it no longer awaits signature through any channel.
func (s *ProtocolService) Sign(ctx context.Context, clientID, month string, index int, req SignRequest) (*models.Entry, error) {
	if !req.Leg.Valid() {
		return nil, fmt.Errorf("%w: unknown leg %q", common.ErrorValidation, req.Leg)
	}
	if len(req.Client) == 0 && len(req.Staff) == 0 && !req.UseDefaultStaff {
		return nil, fmt.Errorf("%w: no signatures provided", common.ErrorValidation)
	}

	repo := s.repos.Protocols(s.db)
	e, err := repo.GetEntry(ctx, clientID, month, index)
	if err != nil {
		return nil, err
	}
	leg := e.Signatures.Leg(req.Leg)

	if len(req.Client) > 0 {
		key := signatureKey(clientID, month, req.Leg, models.PartyClient)
		if err := s.store.Put(ctx, key, req.Client, "image/png"); err != nil {
			return nil, fmt.Errorf("storing client signature: %w", err)
		}
		s.deleteSignatureObject(ctx, leg.Client)
		leg.Client = key
	}

	switch {
	case req.UseDefaultStaff:
		s.deleteSignatureObject(ctx, leg.Staff)
		leg.Staff = DefaultStaffSignatureKey
	case len(req.Staff) > 0:
		key := signatureKey(clientID, month, req.Leg, models.PartyStaff)
		if err := s.store.Put(ctx, key, req.Staff, "image/png"); err != nil {
			return nil, fmt.Errorf("storing staff signature: %w", err)
		}
		s.deleteSignatureObject(ctx, leg.Staff)
		leg.Staff = key
	}

	if e.Signatures.Complete() {
		e.Queue.Clear()
	}

	if err := repo.UpdateEntry(ctx, clientID, month, index, e); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "signatures stored", "client", clientID, "month", month, "index", index, "leg", string(req.Leg))
	return e, nil
}

// DeleteSignature clears one slot and removes its stored image, unless the
// slot holds the shared default.
func (s *ProtocolService) DeleteSignature(ctx context.Context, clientID, month string, index int, legName models.Leg, who models.Party) (*models.Entry, error) {
	if !legName.Valid() {
		return nil, fmt.Errorf("%w: unknown leg %q", common.ErrorValidation, legName)
	}
	if !who.Valid() {
		return nil, fmt.Errorf("%w: unknown party %q", common.ErrorValidation, who)
	}

	repo := s.repos.Protocols(s.db)
	e, err := repo.GetEntry(ctx, clientID, month, index)
	if err != nil {
		return nil, err
	}

	leg := e.Signatures.Leg(legName)
	if key := leg.Get(who); key != "" {
		s.deleteSignatureObject(ctx, key)
		leg.Set(who, "")
		if err := repo.UpdateEntry(ctx, clientID, month, index, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// SignQueue lists entries pending in the given queue, optionally narrowed to
// one month.
func (s *ProtocolService) SignQueue(ctx context.Context, queueType models.QueueType, month string) ([]models.SignQueueItem, error) {
	if !queueType.Valid() {
		return nil, fmt.Errorf("%w: unknown queue type %q", common.ErrorValidation, queueType)
	}
	return s.repos.Protocols(s.db).ListSignQueue(ctx, queueType, month)
}

// deleteSignatureObject removes a stored signature image. Failures are
// logged, not propagated: a dangling object must not block ledger writes.
func (s *ProtocolService) deleteSignatureObject(ctx context.Context, key string) {
	if key == "" || key == DefaultStaffSignatureKey {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn(ctx, "deleting signature object failed", "key", key, "error", err)
	}
}

func signatureKey(clientID, month string, leg models.Leg, who models.Party) string {
	return fmt.Sprintf("signatures/%s/%s/%s_%s_%s.png", clientID, month, leg, who, uuid.New())
}

func checkDateInMonth(date, month string) error {
	key, err := timex.MonthKeyOfDate(date)
	if err != nil {
		return fmt.Errorf("%w: date: %v", common.ErrorValidation, err)
	}
	if key != month {
		return fmt.Errorf("%w: date %s is outside month %s", common.ErrorValidation, date, month)
	}
	return nil
}

// normalizeReturnDate pushes an explicitly set return date off weekends.
// An absent return date stays absent; readers derive the default from the
// transfer date.
func normalizeReturnDate(e *models.Entry) error {
	if e.ReturnDate == "" {
		return nil
	}
	d, err := timex.ParseDate(e.ReturnDate)
	if err != nil {
		return fmt.Errorf("%w: return date: %v", common.ErrorValidation, err)
	}
	e.ReturnDate = timex.FormatDate(timex.NormalizeToBusinessDay(d))
	return nil
}
