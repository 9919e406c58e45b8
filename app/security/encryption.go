// Package security protects stored credentials with a per-install
// AES-256-GCM key.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const keyFileName = "key.bin"

// Keeper seals and opens secrets with the install key. The key file is read
// once at construction; callers hold one Keeper for the session.
type Keeper struct {
	aead cipher.AEAD
}

// NewKeeper loads the install key, generating and persisting one on first
// use, and prepares the cipher.
func NewKeeper() (*Keeper, error) {
	key, err := loadOrCreateKey()
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("could not create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("could not create GCM: %w", err)
	}
	return &Keeper{aead: aead}, nil
}

// Encrypt seals plaintext and encodes it as base64 for JSON storage.
func (k *Keeper) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := k.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a base64 ciphertext produced by Encrypt.
func (k *Keeper) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("could not decode ciphertext: %w", err)
	}
	n := k.aead.NonceSize()
	if len(data) < n {
		return "", errors.New("ciphertext too short")
	}
	plaintext, err := k.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("could not decrypt: %w", err)
	}
	return string(plaintext), nil
}

// EncryptIfNeeded encrypts a value unless it already decrypts cleanly,
// migrating plaintext fields without double-encrypting.
func (k *Keeper) EncryptIfNeeded(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if _, err := k.Decrypt(value); err == nil {
		return value, nil
	}
	return k.Encrypt(value)
}

// keyPath resolves the key file location. STOCKDESK_CONFIG_DIR redirects it
// for tests and portable installs.
func keyPath() (string, error) {
	dir := os.Getenv("STOCKDESK_CONFIG_DIR")
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		dir = filepath.Join(configDir, "StockDesk")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create security directory: %w", err)
	}
	return filepath.Join(dir, keyFileName), nil
}

func loadOrCreateKey() ([]byte, error) {
	path, err := keyPath()
	if err != nil {
		return nil, err
	}

	if key, err := os.ReadFile(path); err == nil {
		if len(key) != 32 {
			return nil, fmt.Errorf("invalid key size: expected 32 bytes, got %d", len(key))
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read key file: %w", err)
	}

	// First run: generate an AES-256 key, readable only by the owner.
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("could not generate random key: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("could not write key file: %w", err)
	}
	return key, nil
}
