package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

const deterministicTokenLength = 16

type deterministicStrategy struct {
	salt []byte
}

// NewDeterministicStrategy creates the keyed-hash token strategy. The same
// (category, value) pair always yields the same token, so repeated
// anonymization of a value is stable across calls and processes. The salt
// alone cannot recover the value; reversal always goes through the vault.
func NewDeterministicStrategy(salt string) TokenStrategy {
	return &deterministicStrategy{salt: []byte(salt)}
}

// Generate computes HMAC-SHA256(salt, "category::value") and returns the
// first 16 hex characters behind the category prefix, e.g. EMAIL_89a0b1c2d3e4f501.
func (s *deterministicStrategy) Generate(
	category vaultDomain.Category,
	value string,
) (string, error) {
	mac := hmac.New(sha256.New, s.salt)
	mac.Write([]byte(fmt.Sprintf("%s::%s", category, value)))
	digest := hex.EncodeToString(mac.Sum(nil))

	return categoryPrefix(category) + digest[:deterministicTokenLength], nil
}

func categoryPrefix(category vaultDomain.Category) string {
	return strings.ToUpper(category.String()) + "_"
}
