package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sivd/piivault/internal/vault/domain"
)

// SQLiteRepository implements vault entry persistence for embedded SQLite
// databases. The unique indexes on (category, value_hash) and
// (category, token) plus INSERT OR IGNORE make Insert race-safe.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite vault repository instance.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// EnsureSchema creates the vault table and its unique indexes if they do not
// exist. Called once at startup by the composition root.
func (s *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS pii_vault (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		value_hash TEXT NOT NULL,
		token TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_pii_vault_value ON pii_vault(category, value_hash);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_pii_vault_token ON pii_vault(category, token);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return storageUnavailable("failed to ensure sqlite schema", err)
	}
	return nil
}

// Insert adds an entry, ignoring the write when the (category, value_hash)
// unique index already holds a row.
func (s *SQLiteRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	query := `INSERT OR IGNORE INTO pii_vault (category, value_hash, token, payload, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.Category.String(),
		entry.ValueHash,
		entry.Token,
		entry.Payload,
		entry.CreatedAt,
	)
	if err != nil {
		return storageUnavailable("failed to insert vault entry", err)
	}
	return nil
}

// GetByToken retrieves an entry by its (category, token) pair.
func (s *SQLiteRepository) GetByToken(
	ctx context.Context,
	category domain.Category,
	token string,
) (*domain.Entry, error) {
	query := `SELECT category, value_hash, token, payload, created_at
			  FROM pii_vault
			  WHERE category = ? AND token = ?`

	return scanEntry(s.db.QueryRowContext(ctx, query, category.String(), token))
}

// GetTokenByValueHash retrieves the canonical token for a
// (category, value_hash) pair.
func (s *SQLiteRepository) GetTokenByValueHash(
	ctx context.Context,
	category domain.Category,
	valueHash string,
) (string, error) {
	query := `SELECT token FROM pii_vault WHERE category = ? AND value_hash = ?`

	var token string
	err := s.db.QueryRowContext(ctx, query, category.String(), valueHash).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrEntryNotFound
		}
		return "", storageUnavailable("failed to get token by value hash", err)
	}
	return token, nil
}

// ListAll returns up to limit entries, newest first.
func (s *SQLiteRepository) ListAll(ctx context.Context, limit int) ([]*domain.Entry, error) {
	query := `SELECT category, value_hash, token, payload, created_at
			  FROM pii_vault
			  ORDER BY created_at DESC, id DESC
			  LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, storageUnavailable("failed to list vault entries", err)
	}

	return scanEntries(rows)
}

// rowScanner abstracts *sql.Row for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var entry domain.Entry
	var category string

	err := row.Scan(&category, &entry.ValueHash, &entry.Token, &entry.Payload, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, storageUnavailable("failed to scan vault entry", err)
	}

	entry.Category = domain.Category(category)
	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]*domain.Entry, error) {
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*domain.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storageUnavailable("error iterating vault entries", err)
	}

	return entries, nil
}
