package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidKeySize is returned when encryption key has invalid size
	ErrInvalidKeySize = errors.New("encryption key must be 32 bytes for AES-256")

	// ErrEncryptionKeyNotSet is returned when no key is configured
	ErrEncryptionKeyNotSet = errors.New("encryption key not set (HISTORY_ENCRYPTION_KEY)")

	// ErrInvalidCiphertext is returned when ciphertext cannot be decrypted
	ErrInvalidCiphertext = errors.New("invalid ciphertext: cannot decrypt")

	// ErrCiphertextTooShort is returned when ciphertext is too short
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

const (
	// AES256KeySize is the required key size for AES-256 (32 bytes)
	AES256KeySize = 32

	// JWTSecretSize is the size of generated JWT secrets (32 bytes)
	JWTSecretSize = 32
)

// DecodeKey decodes a base64 AES-256 key and checks its size
func DecodeKey(keyBase64 string) ([]byte, error) {
	if keyBase64 == "" {
		return nil, ErrEncryptionKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}

	if len(key) != AES256KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrInvalidKeySize, len(key), AES256KeySize)
	}

	return key, nil
}

// GenerateEncryptionKey returns a new random base64-encoded 32-byte key
func GenerateEncryptionKey() (string, error) {
	return randomBase64(AES256KeySize)
}

// GenerateJWTSecret returns a new random base64-encoded 32-byte signing secret
func GenerateJWTSecret() (string, error) {
	return randomBase64(JWTSecretSize)
}

func randomBase64(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Encrypt encrypts plaintext using AES-256-GCM.
// Output is base64 of [nonce(12 bytes)][ciphertext][auth_tag(16 bytes)].
func Encrypt(plaintext []byte, key []byte) (string, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aesGCM.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt
func Decrypt(ciphertextBase64 string, key []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	nonceSize := aesGCM.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, data := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aesGCM.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AES256KeySize {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
