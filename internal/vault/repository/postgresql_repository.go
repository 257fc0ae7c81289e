package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sivd/piivault/internal/vault/domain"
)

// PostgreSQLRepository implements vault entry persistence for PostgreSQL
// databases. ON CONFLICT DO NOTHING over the (category, value_hash) unique
// index gives Insert its race-safe, idempotent semantics.
type PostgreSQLRepository struct {
	db *sql.DB
}

// NewPostgreSQLRepository creates a new PostgreSQL vault repository instance.
func NewPostgreSQLRepository(db *sql.DB) *PostgreSQLRepository {
	return &PostgreSQLRepository{db: db}
}

// EnsureSchema creates the vault table and its unique indexes if they do not
// exist. Called once at startup by the composition root.
func (p *PostgreSQLRepository) EnsureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS pii_vault (
		id BIGSERIAL PRIMARY KEY,
		category TEXT NOT NULL,
		value_hash TEXT NOT NULL,
		token TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_pii_vault_value ON pii_vault(category, value_hash);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_pii_vault_token ON pii_vault(category, token);`

	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return storageUnavailable("failed to ensure postgresql schema", err)
	}
	return nil
}

// Insert adds an entry, ignoring the write when the (category, value_hash)
// unique index already holds a row.
func (p *PostgreSQLRepository) Insert(ctx context.Context, entry *domain.Entry) error {
	query := `INSERT INTO pii_vault (category, value_hash, token, payload, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (category, value_hash) DO NOTHING`

	_, err := p.db.ExecContext(
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
func (p *PostgreSQLRepository) GetByToken(
	ctx context.Context,
	category domain.Category,
	token string,
) (*domain.Entry, error) {
	query := `SELECT category, value_hash, token, payload, created_at
			  FROM pii_vault
			  WHERE category = $1 AND token = $2`

	return scanEntry(p.db.QueryRowContext(ctx, query, category.String(), token))
}

// GetTokenByValueHash retrieves the canonical token for a
// (category, value_hash) pair.
func (p *PostgreSQLRepository) GetTokenByValueHash(
	ctx context.Context,
	category domain.Category,
	valueHash string,
) (string, error) {
	query := `SELECT token FROM pii_vault WHERE category = $1 AND value_hash = $2`

	var token string
	err := p.db.QueryRowContext(ctx, query, category.String(), valueHash).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrEntryNotFound
		}
		return "", storageUnavailable("failed to get token by value hash", err)
	}
	return token, nil
}

// ListAll returns up to limit entries, newest first.
func (p *PostgreSQLRepository) ListAll(ctx context.Context, limit int) ([]*domain.Entry, error) {
	query := `SELECT category, value_hash, token, payload, created_at
			  FROM pii_vault
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1`

	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, storageUnavailable("failed to list vault entries", err)
	}

	return scanEntries(rows)
}
