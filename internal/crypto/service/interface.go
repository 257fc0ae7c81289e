// Package service implements envelope encryption for vault entries.
//
// Every value is encrypted under its own key, derived from the master secret
// and a random per-entry salt, so no two entries share an encryption key and
// the master secret never touches stored data directly.
package service

// Cipher encrypts a single value into an opaque storable payload and decrypts
// it back. Implementations must fail closed: a decryption error never yields
// partial plaintext.
type Cipher interface {
	// Encrypt encrypts plaintext and returns the encoded payload.
	Encrypt(plaintext string) (string, error)

	// Decrypt decodes and decrypts a payload produced by Encrypt. It returns
	// an ErrIntegrity-wrapped error for tampered, truncated, or wrong-key
	// payloads.
	Decrypt(payload string) (string, error)
}
