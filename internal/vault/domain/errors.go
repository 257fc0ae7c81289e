package domain

import (
	"github.com/sivd/piivault/internal/errors"
)

var (
	// ErrEntryNotFound indicates no vault entry exists for the given token or
	// value hash.
	ErrEntryNotFound = errors.Wrap(errors.ErrNotFound, "vault entry not found")

	// ErrInvalidCategory indicates an unsupported PII category was provided.
	ErrInvalidCategory = errors.Wrap(errors.ErrInvalidInput, "invalid category")

	// ErrDecryptionFailed indicates a stored payload failed its integrity
	// check during decryption.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "vault entry decryption failed")
)
