// Package domain defines the transient anonymizer models: detected PII spans
// and the results of text and object substitution.
package domain

import (
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

// Match is a detected PII span over a single scan. Offsets are byte positions
// into the scanned text, start inclusive, end exclusive. Matches are produced
// fresh per call and never persisted.
type Match struct {
	Category vaultDomain.Category
	Start    int
	End      int
	Value    string
}

// Replacement records one substitution performed during text anonymization,
// reported in left-to-right order of the original text.
type Replacement struct {
	Category vaultDomain.Category `json:"category"`
	Token    string               `json:"token"`
}

// TextResult is the outcome of anonymizing a text buffer.
type TextResult struct {
	Text         string
	Replacements []Replacement
}

// TokenMatch is a token-shaped substring found during deanonymization.
// Category is empty for bare tok_ tokens, which carry no category prefix.
type TokenMatch struct {
	Token    string
	Category vaultDomain.Category
	Start    int
	End      int
}
