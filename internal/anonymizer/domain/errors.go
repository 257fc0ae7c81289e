package domain

import (
	"github.com/sivd/piivault/internal/errors"
)

var (
	// ErrEmptyText indicates the input text is missing or whitespace-only.
	ErrEmptyText = errors.Wrap(errors.ErrInvalidInput, "text must not be empty")

	// ErrInvalidObject indicates the structured input is not an object.
	ErrInvalidObject = errors.Wrap(errors.ErrInvalidInput, "data must be an object")

	// ErrTokenNotFound indicates no vault mapping exists for a token. Text
	// flows treat this as "leave the substring unchanged", never a failure.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")
)
