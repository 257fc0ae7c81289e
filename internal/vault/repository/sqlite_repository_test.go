package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sivd/piivault/internal/errors"
	"github.com/sivd/piivault/internal/vault/domain"
)

func setupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))

	return db
}

func newTestEntry(category domain.Category, suffix string, createdAt time.Time) *domain.Entry {
	return &domain.Entry{
		Category:  category,
		ValueHash: "hash-" + suffix,
		Token:     "token-" + suffix,
		Payload:   "payload-" + suffix,
		CreatedAt: createdAt,
	}
}

func TestNewSQLiteRepository(t *testing.T) {
	db := setupSQLiteDB(t)

	repo := NewSQLiteRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &SQLiteRepository{}, repo)
}

func TestSQLiteRepository_Insert(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	entry := newTestEntry(domain.CategoryEmail, "1", time.Now().UTC())
	err := repo.Insert(ctx, entry)
	require.NoError(t, err)

	retrieved, err := repo.GetByToken(ctx, domain.CategoryEmail, entry.Token)
	require.NoError(t, err)
	assert.Equal(t, entry.ValueHash, retrieved.ValueHash)
	assert.Equal(t, entry.Payload, retrieved.Payload)
}

func TestSQLiteRepository_Insert_DuplicateValueHash(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	first := newTestEntry(domain.CategoryEmail, "1", time.Now().UTC())
	require.NoError(t, repo.Insert(ctx, first))

	// Same value hash with a different token must be a silent no-op.
	second := &domain.Entry{
		Category:  domain.CategoryEmail,
		ValueHash: first.ValueHash,
		Token:     "token-other",
		Payload:   "payload-other",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Insert(ctx, second))

	token, err := repo.GetTokenByValueHash(ctx, domain.CategoryEmail, first.ValueHash)
	require.NoError(t, err)
	assert.Equal(t, first.Token, token)

	_, err = repo.GetByToken(ctx, domain.CategoryEmail, "token-other")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSQLiteRepository_Insert_SameValueDifferentCategory(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	email := newTestEntry(domain.CategoryEmail, "1", now)
	phone := &domain.Entry{
		Category:  domain.CategoryPhone,
		ValueHash: email.ValueHash,
		Token:     "token-phone",
		Payload:   "payload-phone",
		CreatedAt: now,
	}

	require.NoError(t, repo.Insert(ctx, email))
	require.NoError(t, repo.Insert(ctx, phone))

	emailToken, err := repo.GetTokenByValueHash(ctx, domain.CategoryEmail, email.ValueHash)
	require.NoError(t, err)
	phoneToken, err := repo.GetTokenByValueHash(ctx, domain.CategoryPhone, email.ValueHash)
	require.NoError(t, err)
	assert.NotEqual(t, emailToken, phoneToken)
}

func TestSQLiteRepository_GetByToken_NotFound(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetByToken(context.Background(), domain.CategoryEmail, "missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSQLiteRepository_GetTokenByValueHash_NotFound(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)

	_, err := repo.GetTokenByValueHash(context.Background(), domain.CategoryPhone, "missing")
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestSQLiteRepository_ListAll(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, suffix := range []string{"1", "2", "3"} {
		entry := newTestEntry(domain.CategoryName, suffix, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Insert(ctx, entry))
	}

	entries, err := repo.ListAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "token-3", entries[0].Token)
	assert.Equal(t, "token-2", entries[1].Token)
	assert.Equal(t, "token-1", entries[2].Token)
}

func TestSQLiteRepository_ListAll_Limit(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, suffix := range []string{"1", "2", "3", "4"} {
		entry := newTestEntry(domain.CategoryEmail, suffix, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Insert(ctx, entry))
	}

	entries, err := repo.ListAll(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "token-4", entries[0].Token)
	assert.Equal(t, "token-3", entries[1].Token)
}

func TestSQLiteRepository_ListAll_Empty(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewSQLiteRepository(db)

	entries, err := repo.ListAll(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
