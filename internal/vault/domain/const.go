// Package domain defines the core vault domain models: PII categories and the
// persisted encrypted entry that maps a token back to its original value.
package domain

import (
	"errors"
)

// Category identifies the kind of PII a vault entry protects.
type Category string

const (
	CategoryEmail Category = "email"
	CategoryPhone Category = "phone"
	CategoryName  Category = "name"
)

// Categories lists every supported category in priority order, most
// authoritative first. The order matters: it drives overlap resolution during
// detection and the lookup order for tokens that carry no category prefix.
var Categories = []Category{CategoryEmail, CategoryPhone, CategoryName}

// Validate checks if the category is supported.
func (c Category) Validate() error {
	switch c {
	case CategoryEmail, CategoryPhone, CategoryName:
		return nil
	default:
		return errors.New("invalid category")
	}
}

// Priority returns the category's overlap-resolution weight. When two detected
// spans overlap, the higher-priority category wins and the loser is discarded.
func (c Category) Priority() int {
	switch c {
	case CategoryEmail:
		return 3
	case CategoryPhone:
		return 2
	case CategoryName:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}
