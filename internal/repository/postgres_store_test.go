package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentease-service/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresStore_Create(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (collection, id, data)")).
		WithArgs(Properties, "p1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.Create(context.Background(), Properties, "p1", model.Document{"name": "Studio"})
	require.NoError(t, err)
	assert.Equal(t, "p1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	s, mock := newMockPostgres(t)
	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("p1", []byte(`{"name":"Studio","monthlyRent":"12000"}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents")).
		WithArgs(Properties, "p1").
		WillReturnRows(rows)

	doc, err := s.Get(context.Background(), Properties, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", doc.ID())
	assert.Equal(t, "Studio", doc["name"])
	assert.Equal(t, "12000", model.PropertyFromDocument(doc).MonthlyRent.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data FROM documents")).
		WithArgs(Properties, "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), Properties, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_UpdateMissingRow(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET data = data ||")).
		WithArgs(Properties, "p1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Update(context.Background(), Properties, "p1", model.Document{"status": "approved"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateIf(t *testing.T) {
	s, mock := newMockPostgres(t)
	query := regexp.QuoteMeta("AND COALESCE(data ->> $4::text, '') IN ($5, '')")
	mock.ExpectExec(query).
		WithArgs(Properties, "p1", sqlmock.AnyArg(), "status", "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs(Properties, "p1", sqlmock.AnyArg(), "status", "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	require.NoError(t, s.UpdateIf(ctx, Properties, "p1", "status", "pending", model.Document{"status": "approved"}))
	err := s.UpdateIf(ctx, Properties, "p1", "status", "pending", model.Document{"status": "rejected"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Set(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (collection, id)")).
		WithArgs(Settings, "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), Settings, "admin", model.Document{"interestFee": "100"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByFieldEncodesValueAsJSON(t *testing.T) {
	s, mock := newMockPostgres(t)
	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("p2", []byte(`{"createVideo":true}`)).
		AddRow("p1", []byte(`{"createVideo":true}`))
	mock.ExpectQuery(regexp.QuoteMeta("data -> $2::text = $3::jsonb")).
		WithArgs(Properties, "createVideo", "true").
		WillReturnRows(rows)

	docs, err := s.FindByField(context.Background(), Properties, "createVideo", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, ids(docs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	s, mock := newMockPostgres(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents")).
		WithArgs(Users, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), Users, "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
