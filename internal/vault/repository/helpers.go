package repository

import (
	"fmt"

	apperrors "github.com/sivd/piivault/internal/errors"
)

// storageUnavailable tags a backend failure so callers can tell "the vault is
// down" apart from "your input was bad". Both the sentinel and the driver
// error stay in the chain.
func storageUnavailable(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, apperrors.ErrStorageUnavailable, err)
}
