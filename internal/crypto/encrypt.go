package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the store key
	//
	// N=2^18 (~256MB RAM, 0.5-2s). The key is derived once at startup,
	// so the cost is paid per process, not per stored value.
	ScryptN      = 1 << 18
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	SaltLen      = 32
	nonceLen     = 12

	sealedPrefix = "v1:"
)

// Sealer encrypts and decrypts values kept in the store with a key derived
// from the store passphrase.
type Sealer struct {
	aead cipher.AEAD
}

// NewSalt returns a random salt for NewSealer.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// NewSealer derives the store key from passphrase and salt.
// passphrase must be []byte for security (caller should zero it after use)
func NewSealer(passphrase, salt []byte, n int) (*Sealer, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("store passphrase is empty")
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("invalid salt length: expected %d bytes, got %d", SaltLen, len(salt))
	}
	if n == 0 {
		n = ScryptN
	}

	// Derive key from passphrase
	key, err := scrypt.Key(passphrase, salt, n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	// Create AES cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Create GCM
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: aesGCM}, nil
}

// Seal encrypts plaintext. The result is printable and carries its own nonce.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// SealString is Seal for string values.
func (s *Sealer) SealString(plaintext string) (string, error) {
	b := []byte(plaintext)
	defer clear(b) // wipe plaintext bytes from memory
	return s.Seal(b)
}
