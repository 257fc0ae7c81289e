package domain

import (
	"time"
)

// Entry represents a persisted vault record linking a token to its encrypted
// original value. Entries are created on the first tokenization of a new
// (category, value) pair and never mutated afterwards.
//
// ValueHash is the content address: re-tokenizing an already-seen value of the
// same category must resolve to this entry instead of creating a second one.
// Both (Category, ValueHash) and (Category, Token) are unique per backend.
type Entry struct {
	Category  Category
	ValueHash string
	Token     string
	// Payload is the encrypted original value in the canonical envelope
	// encoding: base64(salt || nonce || authTag || ciphertext).
	Payload   string
	CreatedAt time.Time
}

// EntryListing is the audit-safe projection of an Entry returned by listing
// operations. Original is populated only when the caller asked for decryption.
type EntryListing struct {
	Category  Category  `json:"category"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	Original  *string   `json:"original,omitempty"`
}
