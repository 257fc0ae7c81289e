package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sivd/piivault/internal/errors"
	"github.com/sivd/piivault/internal/vault/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	return db, mock
}

func entryColumns() []string {
	return []string{"category", "value_hash", "token", "payload", "created_at"}
}

func TestNewPostgreSQLRepository(t *testing.T) {
	db, _ := setupMockDB(t)

	repo := NewPostgreSQLRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &PostgreSQLRepository{}, repo)
}

func TestPostgreSQLRepository_Insert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	entry := newTestEntry(domain.CategoryEmail, "1", time.Now().UTC())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pii_vault")).
		WithArgs("email", entry.ValueHash, entry.Token, entry.Payload, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
}

func TestPostgreSQLRepository_Insert_Conflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	entry := newTestEntry(domain.CategoryEmail, "1", time.Now().UTC())

	// ON CONFLICT DO NOTHING reports zero rows affected; that is still success.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pii_vault")).
		WithArgs("email", entry.ValueHash, entry.Token, entry.Payload, entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
}

func TestPostgreSQLRepository_Insert_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	entry := newTestEntry(domain.CategoryEmail, "1", time.Now().UTC())

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pii_vault")).
		WithArgs("email", entry.ValueHash, entry.Token, entry.Payload, entry.CreatedAt).
		WillReturnError(errors.New("connection refused"))

	err := repo.Insert(context.Background(), entry)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}

func TestPostgreSQLRepository_GetByToken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(entryColumns()).
		AddRow("email", "hash-1", "token-1", "payload-1", createdAt)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, value_hash, token, payload, created_at")).
		WithArgs("email", "token-1").
		WillReturnRows(rows)

	entry, err := repo.GetByToken(context.Background(), domain.CategoryEmail, "token-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryEmail, entry.Category)
	assert.Equal(t, "hash-1", entry.ValueHash)
	assert.Equal(t, "payload-1", entry.Payload)
	assert.Equal(t, createdAt, entry.CreatedAt)
}

func TestPostgreSQLRepository_GetByToken_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT category, value_hash, token, payload, created_at")).
		WithArgs("email", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), domain.CategoryEmail, "missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLRepository_GetTokenByValueHash(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	rows := sqlmock.NewRows([]string{"token"}).AddRow("token-1")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token FROM pii_vault")).
		WithArgs("phone", "hash-1").
		WillReturnRows(rows)

	token, err := repo.GetTokenByValueHash(context.Background(), domain.CategoryPhone, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestPostgreSQLRepository_GetTokenByValueHash_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token FROM pii_vault")).
		WithArgs("phone", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTokenByValueHash(context.Background(), domain.CategoryPhone, "missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestPostgreSQLRepository_ListAll(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(entryColumns()).
		AddRow("email", "hash-2", "token-2", "payload-2", base.Add(time.Minute)).
		AddRow("name", "hash-1", "token-1", "payload-1", base)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs(10).
		WillReturnRows(rows)

	entries, err := repo.ListAll(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "token-2", entries[0].Token)
	assert.Equal(t, domain.CategoryName, entries[1].Category)
}

func TestPostgreSQLRepository_ListAll_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostgreSQLRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs(10).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.ListAll(context.Background(), 10)
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
}
