package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"fitjournal/internal/config"
)

// ErrMissingKey is returned when no token key secret is configured.
var ErrMissingKey = errors.New("token encryption key is not configured")

// ErrInvalidCiphertext is returned for ciphertext that cannot be decoded or
// fails authentication.
var ErrInvalidCiphertext = errors.New("invalid token ciphertext")

// TokenCipher encrypts and decrypts OAuth tokens with AES-256-GCM. The key is
// derived from the configured secret via HKDF-SHA256, so the secret itself
// never needs to be exactly 32 bytes.
type TokenCipher struct {
	aead cipher.AEAD
}

func NewTokenCipher(cfg *config.Config) (*TokenCipher, error) {
	return NewTokenCipherFromSecret(cfg.Whoop.TokenKey)
}

func NewTokenCipherFromSecret(secret string) (*TokenCipher, error) {
	if secret == "" {
		return nil, ErrMissingKey
	}

	hk := hkdf.New(sha256.New, []byte(secret), nil, []byte("whoop-token-cipher"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, fmt.Errorf("failed to derive cipher key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	return &TokenCipher{aead: aead}, nil
}

// Encrypt seals the plaintext with a random nonce and returns
// base64(nonce || ciphertext).
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or truncated input yields
// ErrInvalidCiphertext.
func (c *TokenCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < c.aead.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
