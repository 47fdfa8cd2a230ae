package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestTokenCipherRoundTrip(t *testing.T) {
	cipher, err := NewTokenCipherFromSecret("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}

	plaintext := "access-token-abc123"
	encrypted, err := cipher.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if encrypted == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := cipher.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("round trip mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestTokenCipherEncryptIsNonDeterministic(t *testing.T) {
	cipher, err := NewTokenCipherFromSecret("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}

	a, _ := cipher.Encrypt("same input")
	b, _ := cipher.Encrypt("same input")
	if a == b {
		t.Fatal("expected distinct ciphertexts for repeated input")
	}
}

func TestTokenCipherRejectsTamperedCiphertext(t *testing.T) {
	cipher, err := NewTokenCipherFromSecret("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}

	encrypted, err := cipher.Encrypt("refresh-token")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(encrypted)
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := cipher.Decrypt(tampered); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestTokenCipherRejectsMalformedInput(t *testing.T) {
	cipher, err := NewTokenCipherFromSecret("unit-test-secret")
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}

	for _, input := range []string{"", "not base64!!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := cipher.Decrypt(input); !errors.Is(err, ErrInvalidCiphertext) {
			t.Fatalf("input %q: expected ErrInvalidCiphertext, got %v", input, err)
		}
	}
}

func TestNewTokenCipherRequiresSecret(t *testing.T) {
	if _, err := NewTokenCipherFromSecret(""); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestDifferentSecretsCannotDecrypt(t *testing.T) {
	a, _ := NewTokenCipherFromSecret("secret-a")
	b, _ := NewTokenCipherFromSecret("secret-b")

	encrypted, err := a.Encrypt("token")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, err := b.Decrypt(encrypted); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext across keys, got %v", err)
	}
}
