package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/sivd/piivault/internal/vault/domain"
)

type sha256HashService struct{}

// NewSHA256HashService creates the hash service used for content-addressed
// dedup. The category is part of the hashed input so the same literal value in
// two categories never aliases to one entry.
func NewSHA256HashService() HashService {
	return &sha256HashService{}
}

// Hash computes SHA-256 over "category::value" and returns it as a hex string.
func (s *sha256HashService) Hash(category domain.Category, value string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s::%s", category, value)))
	return hex.EncodeToString(hash[:])
}
