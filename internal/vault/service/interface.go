// Package service implements the vault store: content-addressed, encrypted
// persistence of token-to-value mappings over pluggable repositories.
package service

import (
	"context"

	"github.com/sivd/piivault/internal/vault/domain"
)

// Repository is the uniform persistence contract satisfied by every backend
// (file, sqlite, postgres, mongo). Implementations must enforce uniqueness on
// both (category, value_hash) and (category, token).
type Repository interface {
	// Insert persists an entry. If an entry already exists for the entry's
	// (category, value_hash), the call is a no-op; the existing entry is never
	// overwritten. Must be safe under concurrent callers for the same pair.
	Insert(ctx context.Context, entry *domain.Entry) error

	// GetByToken returns the entry for a (category, token) pair, or
	// domain.ErrEntryNotFound.
	GetByToken(ctx context.Context, category domain.Category, token string) (*domain.Entry, error)

	// GetTokenByValueHash returns the canonical token stored for a
	// (category, value_hash) pair, or domain.ErrEntryNotFound.
	GetTokenByValueHash(ctx context.Context, category domain.Category, valueHash string) (string, error)

	// ListAll returns up to limit entries, most recently created first.
	ListAll(ctx context.Context, limit int) ([]*domain.Entry, error)
}

// Store is the vault store contract used by the tokenizer and the
// orchestrator. It owns hashing and encryption; repositories only ever see
// ciphertext.
type Store interface {
	// UpsertOriginal persists the encrypted value under token, deduplicating
	// by content: if the (category, value) pair is already stored, the call
	// leaves the existing entry untouched. It returns the canonical token, so
	// under a concurrent race for the same value all callers converge on the
	// single surviving mapping.
	UpsertOriginal(ctx context.Context, category domain.Category, value, token string) (string, error)

	// GetOriginalByToken decrypts and returns the value for a known token.
	// Returns domain.ErrEntryNotFound for unknown tokens and an
	// ErrIntegrity-wrapped error when the stored payload fails decryption.
	GetOriginalByToken(ctx context.Context, category domain.Category, token string) (string, error)

	// FindTokenByValue returns the token already issued for (category, value),
	// or domain.ErrEntryNotFound.
	FindTokenByValue(ctx context.Context, category domain.Category, value string) (string, error)

	// ListEntries returns up to limit entries, newest first. With decrypt set
	// the original plaintext is included; otherwise it is omitted for
	// audit-safe listing.
	ListEntries(ctx context.Context, limit int, decrypt bool) ([]*domain.EntryListing, error)
}

// HashService provides the content-address hash for deterministic lookups.
type HashService interface {
	Hash(category domain.Category, value string) string
}
