// Package crypto derives the API-key encryption key from the process
// master secret and performs AES-256-GCM encrypt/decrypt of provider
// credentials (§3 ApiKey invariant).
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	nonceLen  = 12
	masterLen = 64
	hkdfInfo  = "hmac-sha-256 key"
	keyLen    = 32
)

// KeyRing holds the derived 32-byte AES key for the process lifetime.
type KeyRing struct {
	aesKey [keyLen]byte
}

// NewKeyRing decodes a base64 master secret (must decode to exactly 64
// bytes — any other length is Fatal at startup per §6) and derives the
// AES-256 key via HKDF-SHA256 with info "hmac-sha-256 key".
func NewKeyRing(base64Master string) (*KeyRing, error) {
	raw, err := base64.StdEncoding.DecodeString(base64Master)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid base64: %w", err)
	}
	if len(raw) != masterLen {
		return nil, fmt.Errorf("master key must decode to %d bytes, got %d", masterLen, len(raw))
	}

	kdf := hkdf.New(sha256.New, raw, nil, []byte(hkdfInfo))
	var kr KeyRing
	if _, err := io.ReadFull(kdf, kr.aesKey[:]); err != nil {
		return nil, fmt.Errorf("derive AES key: %w", err)
	}
	return &kr, nil
}

// Encrypt returns nonce‖ciphertext under AES-256-GCM.
func (k *KeyRing) Encrypt(plaintext string) ([]byte, error) {
	block, err := aes.NewCipher(k.aesKey[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return out, nil
}

// Decrypt reverses Encrypt: splits the 12-byte nonce from the ciphertext and
// opens it under AES-256-GCM.
func (k *KeyRing) Decrypt(ciphertext []byte) (string, error) {
	if len(ciphertext) <= nonceLen {
		return "", fmt.Errorf("ciphertext too short")
	}

	block, err := aes.NewCipher(k.aesKey[:])
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce, ct := ciphertext[:nonceLen], ciphertext[nonceLen:]
	plain, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt api key: %w", err)
	}
	return string(plain), nil
}
