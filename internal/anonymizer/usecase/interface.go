// Package usecase implements the anonymization orchestrator: it coordinates
// the detector, the tokenizer, and the vault store to anonymize and restore
// text buffers and nested structured values.
package usecase

import (
	"context"

	"github.com/sivd/piivault/internal/anonymizer/domain"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

// AnonymizerUseCase defines the anonymization business logic exposed to the
// HTTP handlers and the CLI commands.
type AnonymizerUseCase interface {
	// AnonymizeText detects PII spans in text and replaces each with a token.
	// Replacements are reported in left-to-right order of the original text.
	AnonymizeText(ctx context.Context, text string) (*domain.TextResult, error)

	// DeanonymizeText restores token-shaped substrings to their original
	// values. Unknown tokens are left in place, never failing the call.
	DeanonymizeText(ctx context.Context, text string) (string, error)

	// AnonymizeObject deep-clones a nested object or array, tokenizing the
	// string leaves selected by the field policy. Keys are never tokenized.
	// With a non-nil piiFields list, only those field names are selected by
	// name; value-shape sniffing still applies.
	AnonymizeObject(ctx context.Context, data any, piiFields []string) (any, error)

	// DeanonymizeObject deep-clones a nested object or array, restoring
	// tokens found in its string leaves.
	DeanonymizeObject(ctx context.Context, data any) (any, error)

	// ListVaultEntries returns up to limit vault entries, newest first. With
	// decrypt set each listing carries the original plaintext.
	ListVaultEntries(ctx context.Context, limit int, decrypt bool) ([]*vaultDomain.EntryListing, error)
}
