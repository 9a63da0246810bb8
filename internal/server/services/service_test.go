package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/sterilpoint/protokol/internal/common"
	"github.com/sterilpoint/protokol/internal/dbx"
	"github.com/sterilpoint/protokol/internal/logging"
	"github.com/sterilpoint/protokol/internal/models"
	"github.com/sterilpoint/protokol/internal/server/repositories/clients"
	"github.com/sterilpoint/protokol/internal/server/repositories/exports"
	"github.com/sterilpoint/protokol/internal/server/repositories/protocols"
	"github.com/sterilpoint/protokol/internal/server/repositories/tools"
	"github.com/sterilpoint/protokol/internal/server/repositories/users"
)

// fakeStore records object writes and deletes in memory.
type fakeStore struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", common.ErrorNotFound
	}
	return "https://signed.example/" + key, nil
}

// fakeRepos vends a real sqlite-backed protocols repository and in-memory
// fakes for the rest.
type fakeRepos struct {
	clientRows []models.Client
	toolNames  []string
	userRows   map[string]*models.User
	exportRows []exports.Record

	// handles the protocols repository was vended with, in call order
	protocolHandles []dbx.DBTX
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		clientRows: []models.Client{{ID: "acme", Name: "ACME Dental"}},
		userRows:   map[string]*models.User{},
	}
}

func (f *fakeRepos) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (f *fakeRepos) Protocols(db dbx.DBTX) protocols.Repository {
	f.protocolHandles = append(f.protocolHandles, db)
	return protocols.NewPostgresRepository(db)
}

func (f *fakeRepos) Clients(db dbx.DBTX) clients.Repository { return (*fakeClientRepo)(f) }
func (f *fakeRepos) Tools(db dbx.DBTX) tools.Repository     { return (*fakeToolRepo)(f) }
func (f *fakeRepos) Users(db dbx.DBTX) users.Repository     { return (*fakeUserRepo)(f) }
func (f *fakeRepos) Exports(db dbx.DBTX) exports.Repository { return (*fakeExportRepo)(f) }

type fakeClientRepo fakeRepos

func (f *fakeClientRepo) List(ctx context.Context) ([]models.Client, error) {
	return f.clientRows, nil
}

func (f *fakeClientRepo) Get(ctx context.Context, id string) (*models.Client, error) {
	for i := range f.clientRows {
		if f.clientRows[i].ID == id {
			return &f.clientRows[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeToolRepo fakeRepos

func (f *fakeToolRepo) ListNames(ctx context.Context) ([]string, error) { return f.toolNames, nil }

type fakeUserRepo fakeRepos

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	f.userRows[u.Username] = u
	return nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := f.userRows[username]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeExportRepo fakeRepos

func (f *fakeExportRepo) Insert(ctx context.Context, rec *exports.Record) error {
	f.exportRows = append(f.exportRows, *rec)
	return nil
}

func (f *fakeExportRepo) Get(ctx context.Context, id string) (*exports.Record, error) {
	for i := range f.exportRows {
		if f.exportRows[i].ID == id {
			return &f.exportRows[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeExportRepo) List(ctx context.Context, month string) ([]exports.Record, error) {
	if month == "" {
		return f.exportRows, nil
	}
	var out []exports.Record
	for _, rec := range f.exportRows {
		if rec.Month == month {
			out = append(out, rec)
		}
	}
	return out, nil
}

var svcDBSeq int

func setupLedgerDB(t *testing.T) *sql.DB {
	t.Helper()
	svcDBSeq++
	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", svcDBSeq)
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE protocols (
		client_id TEXT NOT NULL, month TEXT NOT NULL,
		PRIMARY KEY (client_id, month))`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE protocol_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id TEXT NOT NULL, month TEXT NOT NULL, position INTEGER NOT NULL,
		date TEXT NOT NULL, packages INTEGER NOT NULL DEFAULT 0,
		service TEXT NOT NULL DEFAULT 'none', comment TEXT NOT NULL DEFAULT '',
		tools TEXT NOT NULL DEFAULT '[]',
		return_date TEXT NOT NULL DEFAULT '', return_packages INTEGER NOT NULL DEFAULT 0,
		return_tools TEXT NOT NULL DEFAULT '[]', signatures TEXT NOT NULL DEFAULT '{}',
		courier_pending BOOLEAN NOT NULL DEFAULT FALSE,
		point_pending BOOLEAN NOT NULL DEFAULT FALSE,
		courier_planned_date TEXT NOT NULL DEFAULT '')`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE clients (
		id TEXT PRIMARY KEY, name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '', tax_identifier TEXT NOT NULL DEFAULT '')`)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewJSON(io.Discard, slog.LevelError)
}

type harness struct {
	db    *sql.DB
	repos *fakeRepos
	store *fakeStore
}

func newHarness(t *testing.T) *harness {
	return &harness{db: setupLedgerDB(t), repos: newFakeRepos(), store: newFakeStore()}
}

func (h *harness) protocolService() *ProtocolService {
	return NewProtocolService(h.db, h.repos, h.store, testLogger())
}

func (h *harness) exportService() *ExportService {
	svc := NewExportService(h.db, h.repos, h.store, testLogger())
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC) }
	return svc
}
