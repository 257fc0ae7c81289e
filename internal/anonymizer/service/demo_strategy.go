package service

import (
	"crypto/sha256"
	"encoding/hex"

	vaultDomain "github.com/sivd/piivault/internal/vault/domain"
)

const demoTokenLength = 12

type demoStrategy struct{}

// NewDemoStrategy creates the short-hash token strategy for illustrative,
// non-production flows. Tokens are a truncated unkeyed hash of the value;
// still one-way without the vault, but offering no brute-force resistance.
func NewDemoStrategy() TokenStrategy {
	return &demoStrategy{}
}

// Generate returns the category prefix plus the first 12 hex characters of
// SHA-256(value).
func (s *demoStrategy) Generate(category vaultDomain.Category, value string) (string, error) {
	digest := sha256.Sum256([]byte(value))
	return categoryPrefix(category) + hex.EncodeToString(digest[:])[:demoTokenLength], nil
}
