package service

import (
	"github.com/google/uuid"

	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

// randomTokenPrefix marks tokens that carry no category information; reversal
// tries every category in priority order.
const randomTokenPrefix = "tok_"

type randomStrategy struct{}

// NewRandomStrategy creates the opaque token strategy. Tokens are independent
// of the value, so the vault is the only way back; tokenizing the same value
// twice reuses the stored mapping instead of minting a second token.
func NewRandomStrategy() TokenStrategy {
	return &randomStrategy{}
}

// Generate returns tok_<uuid4>.
func (s *randomStrategy) Generate(category vaultDomain.Category, value string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return randomTokenPrefix + id.String(), nil
}
