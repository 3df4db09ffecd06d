package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	ErrInvalidSealKey = errors.New("seal key must be 32 bytes, raw or hex encoded")
	ErrSealedValue    = errors.New("sealed value is corrupted or was sealed with another key")
)

// Sealer encrypts bearer tokens before they are written to a shared store.
// The zero key is never accepted; use NewPlainSealer to store tokens as is.
type Sealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

// SecretboxSealer seals values with NaCl secretbox. The output is
// base64(nonce || box).
type SecretboxSealer struct {
	key  [keySize]byte
	rand io.Reader
}

// NewSecretboxSealer parses key as 64 hex characters or 32 raw bytes
func NewSecretboxSealer(key string) (*SecretboxSealer, error) {
	var raw []byte
	switch len(key) {
	case keySize * 2:
		decoded, err := hex.DecodeString(key)
		if err != nil {
			return nil, ErrInvalidSealKey
		}
		raw = decoded
	case keySize:
		raw = []byte(key)
	default:
		return nil, ErrInvalidSealKey
	}

	s := &SecretboxSealer{rand: rand.Reader}
	copy(s.key[:], raw)
	return s, nil
}

// Seal encrypts plain with a fresh random nonce
func (s *SecretboxSealer) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal
func (s *SecretboxSealer) Open(sealed string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(data) < nonceSize+secretbox.Overhead {
		return "", ErrSealedValue
	}
	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])
	plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealedValue
	}
	return string(plain), nil
}

type plainSealer struct{}

// NewPlainSealer returns a Sealer that stores values unchanged. Only for
// process-local stores and development.
func NewPlainSealer() Sealer {
	return plainSealer{}
}

func (plainSealer) Seal(plain string) (string, error)  { return plain, nil }
func (plainSealer) Open(sealed string) (string, error) { return sealed, nil }

// NewSealer picks secretbox when a key is configured and the plain sealer otherwise
func NewSealer(key string) (Sealer, error) {
	if key == "" {
		return NewPlainSealer(), nil
	}
	return NewSecretboxSealer(key)
}

var _ Sealer = (*SecretboxSealer)(nil)
