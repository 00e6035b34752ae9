package crypto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPassphrase is returned when a value cannot be authenticated,
// which in practice means it was sealed under another passphrase.
var ErrInvalidPassphrase = errors.New("invalid passphrase")

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) ([]byte, error) {
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return nil, errors.New("value is not sealed")
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode sealed value: %w", err)
	}
	if len(data) < nonceLen+s.aead.Overhead() {
		return nil, errors.New("sealed value is too short")
	}

	nonce, ciphertext := data[:nonceLen], data[nonceLen:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}
	return plaintext, nil
}

// OpenString is Open for string values.
func (s *Sealer) OpenString(sealed string) (string, error) {
	b, err := s.Open(sealed)
	if err != nil {
		return "", err
	}
	defer clear(b) // wipe decrypted bytes from memory
	return string(b), nil
}

// IsSealed reports whether v looks like the output of Seal.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, sealedPrefix)
}
