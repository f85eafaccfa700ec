// Package crypto seals secrets at rest with AES-256-GCM envelope encryption:
// the root key wraps one data key per session, the data key wraps the
// session's secrets.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

type Encryptor struct {
	rootKey []byte
}

// NewEncryptor creates an Encryptor from a 32-byte hex-encoded root key.
func NewEncryptor(rootKeyHex string) (*Encryptor, error) {
	key, err := hex.DecodeString(rootKeyHex)
	if err != nil {
		return nil, errors.New("ROOT_ENCRYPTION_KEY must be hex-encoded")
	}
	if len(key) != 32 {
		return nil, errors.New("ROOT_ENCRYPTION_KEY must be 32 bytes (64 hex chars)")
	}
	return &Encryptor{rootKey: key}, nil
}

// NewDataKey returns a fresh data key wrapped by the root key. Only the
// wrapped form is ever stored.
func (e *Encryptor) NewDataKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return seal(e.rootKey, key)
}

// SealString encrypts secret under the data key wrapped in wrappedKey.
func (e *Encryptor) SealString(wrappedKey []byte, secret string) ([]byte, error) {
	key, err := open(e.rootKey, wrappedKey)
	if err != nil {
		return nil, fmt.Errorf("unwrap data key: %w", err)
	}
	return seal(key, []byte(secret))
}

// OpenString reverses SealString.
func (e *Encryptor) OpenString(wrappedKey, sealed []byte) (string, error) {
	key, err := open(e.rootKey, wrappedKey)
	if err != nil {
		return "", fmt.Errorf("unwrap data key: %w", err)
	}
	plain, err := open(key, sealed)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// seal output format: [nonce(12) | ciphertext+tag].
func seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func open(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(data) < n {
		return nil, ErrCiphertextTooShort
	}
	return gcm.Open(nil, data[:n], data[n:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
