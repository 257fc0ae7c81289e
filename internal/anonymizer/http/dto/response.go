package dto

import (
	"time"

	anonymizerDomain "github.com/sivd/piivault/internal/anonymizer/domain"
	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

// AnonymizeTextResponse carries the substituted text and the applied
// replacements in left-to-right order.
type AnonymizeTextResponse struct {
	AnonymizedMessage string                        `json:"anonymized_message"`
	Replacements      []anonymizerDomain.Replacement `json:"replacements"`
}

// MapTextResultToResponse converts a text anonymization result to an API
// response.
func MapTextResultToResponse(result *anonymizerDomain.TextResult) AnonymizeTextResponse {
	return AnonymizeTextResponse{
		AnonymizedMessage: result.Text,
		Replacements:      result.Replacements,
	}
}

// DeanonymizeTextResponse carries the restored text.
type DeanonymizeTextResponse struct {
	Message string `json:"message"`
}

// ObjectResponse carries an anonymized or restored structured value.
type ObjectResponse struct {
	Data any `json:"data"`
}

// VaultEntryResponse represents one vault entry in listings. Original is only
// present when the listing was requested with decrypt enabled.
type VaultEntryResponse struct {
	Category  string    `json:"category"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	Original  *string   `json:"original,omitempty"`
}

// ListVaultEntriesResponse carries a vault listing.
type ListVaultEntriesResponse struct {
	Entries []VaultEntryResponse `json:"entries"`
}

// MapListingsToResponse converts vault entry listings to an API response.
func MapListingsToResponse(listings []*vaultDomain.EntryListing) ListVaultEntriesResponse {
	entries := make([]VaultEntryResponse, 0, len(listings))
	for _, listing := range listings {
		entries = append(entries, VaultEntryResponse{
			Category:  listing.Category.String(),
			Token:     listing.Token,
			CreatedAt: listing.CreatedAt,
			Original:  listing.Original,
		})
	}
	return ListVaultEntriesResponse{Entries: entries}
}
