package exports

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sterilpoint/protokol/internal/common"
)

var recordColumns = []string{
	"id", "client_id", "month", "name", "object_key",
	"total_packages", "fingerprints", "created_at",
}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestInsert_MarshalsFingerprints(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO exports").
		WithArgs("id1", "acme", "2024-03", "Protokol_Marzec_2024_ACME",
			"exports/id1.json", 4, []byte(`["f1","f2"]`), created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &Record{
		ID:            "id1",
		ClientID:      "acme",
		Month:         "2024-03",
		Name:          "Protokol_Marzec_2024_ACME",
		ObjectKey:     "exports/id1.json",
		TotalPackages: 4,
		Fingerprints:  []string{"f1", "f2"},
		CreatedAt:     created,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_WrapsDBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO exports").WillReturnError(errors.New("boom"))

	err := repo.Insert(context.Background(), &Record{ID: "id1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGet_MapsRowAndNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM exports").
		WithArgs("id1").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("id1", "acme", "2024-03", "n", "exports/id1.json", 4, []byte(`["f1"]`), created))

	rec, err := repo.Get(context.Background(), "id1")
	require.NoError(t, err)
	assert.Equal(t, "acme", rec.ClientID)
	assert.Equal(t, []string{"f1"}, rec.Fingerprints)
	assert.Equal(t, created, rec.CreatedAt)

	mock.ExpectQuery("SELECT (.+) FROM exports").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_FiltersByMonth(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM exports").
		WithArgs("2024-03").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("id1", "acme", "2024-03", "n", "exports/id1.json", 4, []byte(nil), created))

	list, err := repo.List(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "id1", list[0].ID)
	assert.Nil(t, list[0].Fingerprints)
	require.NoError(t, mock.ExpectationsWereMet())
}
