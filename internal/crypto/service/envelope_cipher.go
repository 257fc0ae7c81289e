package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/sivd/piivault/internal/errors"
)

// Envelope layout constants. The wire format is the single canonical encoding
// for every storage backend: base64(salt || nonce || authTag || ciphertext).
const (
	saltLength  = 16
	nonceLength = 12
	tagLength   = 16
	keyLength   = 32

	// keyIterations makes key derivation deliberately expensive (tens of
	// milliseconds) to resist brute-force attacks on the master secret.
	keyIterations = 210_000

	// MinMasterSecretLength is the minimum master secret size accepted at
	// construction time.
	MinMasterSecretLength = 16
)

// EnvelopeCipher implements Cipher using PBKDF2-SHA512 key derivation and
// AES-256-GCM authenticated encryption.
//
// The cipher instance is stateless apart from the master secret and safe for
// concurrent use from multiple goroutines. Each encryption generates a fresh
// salt and nonce independently.
type EnvelopeCipher struct {
	masterSecret []byte
}

// NewEnvelopeCipher creates an EnvelopeCipher for the given master secret.
// A secret shorter than MinMasterSecretLength is a configuration error,
// surfaced here rather than at call time.
func NewEnvelopeCipher(masterSecret string) (*EnvelopeCipher, error) {
	if len(masterSecret) < MinMasterSecretLength {
		return nil, apperrors.Wrap(
			apperrors.ErrConfiguration,
			fmt.Sprintf("master secret must be at least %d characters", MinMasterSecretLength),
		)
	}

	return &EnvelopeCipher{masterSecret: []byte(masterSecret)}, nil
}

// Encrypt derives a fresh 256-bit key from the master secret and a random salt,
// then seals plaintext under AES-256-GCM with a random nonce. The returned
// payload carries everything needed for decryption except the master secret.
func (e *EnvelopeCipher) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := e.newAEAD(salt)
	if err != nil {
		return "", err
	}

	// Seal appends the auth tag to the ciphertext; split it back out so the
	// stored layout is salt || nonce || tag || ciphertext.
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	payload := make([]byte, 0, saltLength+nonceLength+tagLength+len(ciphertext))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, tag...)
	payload = append(payload, ciphertext...)

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt re-derives the key from the stored salt and opens the payload,
// verifying the authentication tag. Any bit flip in the ciphertext or tag, a
// truncated payload, or a different master secret fails the integrity check.
func (e *EnvelopeCipher) Decrypt(payload string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrIntegrity, "payload is not valid base64")
	}

	if len(raw) < saltLength+nonceLength+tagLength {
		return "", apperrors.Wrap(apperrors.ErrIntegrity, "payload is truncated")
	}

	salt := raw[:saltLength]
	nonce := raw[saltLength : saltLength+nonceLength]
	tag := raw[saltLength+nonceLength : saltLength+nonceLength+tagLength]
	ciphertext := raw[saltLength+nonceLength+tagLength:]

	aead, err := e.newAEAD(salt)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+tagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrIntegrity, "decryption failed")
	}

	return string(plaintext), nil
}

// newAEAD derives the per-entry key and builds the AES-GCM instance.
func (e *EnvelopeCipher) newAEAD(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.masterSecret, salt, keyIterations, keyLength, sha512.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
