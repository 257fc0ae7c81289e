// Package service implements PII detection, token generation strategies, the
// tokenizer that binds them to the vault store, and the field policy used for
// structured object traversal.
package service

import (
	"context"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

// Detector scans a text buffer and produces an ordered set of non-overlapping
// PII matches.
type Detector interface {
	// Detect returns matches sorted by descending start offset so callers can
	// splice replacements without recomputing offsets. Overlapping candidates
	// are resolved by category priority; the loser is discarded entirely.
	Detect(text string) []domain.Match
}

// TokenStrategy generates a token for a (category, value) pair. Strategies are
// interchangeable; configuration selects exactly one per deployment.
type TokenStrategy interface {
	Generate(category vaultDomain.Category, value string) (string, error)
}

// Tokenizer maps (category, value) pairs to tokens and back, delegating
// persistence to the vault store.
type Tokenizer interface {
	// Tokenize returns the token for a (category, value) pair, reusing an
	// existing mapping when one is already stored. Under concurrent races for
	// the same value every caller receives the same canonical token.
	Tokenize(ctx context.Context, category vaultDomain.Category, value string) (string, error)

	// Detokenize resolves a token back to its original value. Unknown tokens
	// yield domain.ErrTokenNotFound; callers in text flows leave the
	// substring unchanged instead of failing.
	Detokenize(ctx context.Context, token string) (string, error)

	// FindTokens scans text for token-shaped substrings, sorted by descending
	// start offset.
	FindTokens(text string) []domain.TokenMatch
}

// FieldPolicy decides which leaves of a structured value carry PII, either by
// field name or by value shape, and assigns the vault category for selected
// leaves.
type FieldPolicy interface {
	IsPIIField(name string) bool
	IsPIIValue(value string) bool
	Categorize(value string) vaultDomain.Category
}
