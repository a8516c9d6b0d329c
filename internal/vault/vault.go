// Package vault encrypts and decrypts provider API keys with a
// password-derived symmetric key. It is storage-agnostic: callers persist
// the returned blobs wherever they like.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecrypt is returned when a blob cannot be decrypted: malformed input,
// wrong password, or a failed authentication tag. Callers treat it as "no
// key configured" rather than a fault.
var ErrDecrypt = errors.New("vault: cannot decrypt blob")

const (
	// keySalt is the fixed application-wide PBKDF2 salt. A static salt is
	// acceptable here: the threat model is "don't leave raw keys readable
	// in local storage", not resisting a targeted attacker with DB access.
	keySalt = "polyask-vault-v1"

	keyIterations = 100_000
	keyLength     = 32 // AES-256
)

// DeriveKey derives a 32-byte AES-256 key from the password using
// PBKDF2-SHA256 with the fixed application salt. The same password always
// yields the same key.
func DeriveKey(password string) []byte {
	return pbkdf2.Key([]byte(password), []byte(keySalt), keyIterations, keyLength, sha256.New)
}

// Encrypt derives the key from password and encrypts plaintext with
// AES-256-GCM under a fresh random 96-bit nonce. The result is
// base64(nonce || ciphertext || tag). Every call produces a new nonce, so
// identical inputs never yield identical blobs.
func Encrypt(plaintext, password string) (string, error) {
	gcm, err := newGCM(password)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns ErrDecrypt for a malformed blob, a
// wrong password, or a tampered ciphertext; it never panics.
func Decrypt(blob, password string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", ErrDecrypt
	}

	gcm, err := newGCM(password)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", ErrDecrypt
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

func newGCM(password string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(password))
	if err != nil {
		return nil, fmt.Errorf("vault: aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
