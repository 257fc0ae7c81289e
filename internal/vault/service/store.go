package service

import (
	"context"
	"time"

	cryptoService "github.com/sivd/piivault/internal/crypto/service"
	apperrors "github.com/sivd/piivault/internal/errors"
	"github.com/sivd/piivault/internal/vault/domain"
)

// vaultStore implements Store over a Repository, a Cipher, and a HashService.
type vaultStore struct {
	repo    Repository
	cipher  cryptoService.Cipher
	hasher  HashService
	nowFunc func() time.Time
}

// NewVaultStore creates a Store with injected dependencies.
func NewVaultStore(repo Repository, cipher cryptoService.Cipher, hasher HashService) Store {
	return &vaultStore{
		repo:    repo,
		cipher:  cipher,
		hasher:  hasher,
		nowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// UpsertOriginal encrypts value and inserts it under token, ignoring the
// insert when the (category, value) pair is already stored. The read-back
// after the insert resolves concurrent races: whichever insert won the unique
// constraint is the canonical mapping every caller returns.
func (s *vaultStore) UpsertOriginal(
	ctx context.Context,
	category domain.Category,
	value, token string,
) (string, error) {
	if err := category.Validate(); err != nil {
		return "", domain.ErrInvalidCategory
	}

	valueHash := s.hasher.Hash(category, value)

	payload, err := s.cipher.Encrypt(value)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt value")
	}

	entry := &domain.Entry{
		Category:  category,
		ValueHash: valueHash,
		Token:     token,
		Payload:   payload,
		CreatedAt: s.nowFunc(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return "", err
	}

	canonical, err := s.repo.GetTokenByValueHash(ctx, category, valueHash)
	if err != nil {
		return "", err
	}

	return canonical, nil
}

// GetOriginalByToken fetches and decrypts the entry for a token.
func (s *vaultStore) GetOriginalByToken(
	ctx context.Context,
	category domain.Category,
	token string,
) (string, error) {
	entry, err := s.repo.GetByToken(ctx, category, token)
	if err != nil {
		return "", err
	}

	plaintext, err := s.cipher.Decrypt(entry.Payload)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// FindTokenByValue resolves the token already issued for a value, if any.
func (s *vaultStore) FindTokenByValue(
	ctx context.Context,
	category domain.Category,
	value string,
) (string, error) {
	return s.repo.GetTokenByValueHash(ctx, category, s.hasher.Hash(category, value))
}

// ListEntries returns the newest entries first. Decryption failures on
// individual entries surface as ErrIntegrity rather than skipping silently.
func (s *vaultStore) ListEntries(
	ctx context.Context,
	limit int,
	decrypt bool,
) ([]*domain.EntryListing, error) {
	entries, err := s.repo.ListAll(ctx, limit)
	if err != nil {
		return nil, err
	}

	listings := make([]*domain.EntryListing, 0, len(entries))
	for _, entry := range entries {
		listing := &domain.EntryListing{
			Category:  entry.Category,
			Token:     entry.Token,
			CreatedAt: entry.CreatedAt,
		}

		if decrypt {
			plaintext, err := s.cipher.Decrypt(entry.Payload)
			if err != nil {
				return nil, domain.ErrDecryptionFailed
			}
			listing.Original = &plaintext
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
