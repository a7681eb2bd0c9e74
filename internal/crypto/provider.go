package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the derived symmetric key length.
	KeySize = 32
	// SaltSize is the key-derivation salt length.
	SaltSize = 32
	// NonceSize is the XChaCha20-Poly1305 extended nonce length.
	NonceSize = chacha20poly1305.NonceSizeX
	// TagSize is the Poly1305 authentication tag length.
	TagSize = chacha20poly1305.Overhead

	// Argon2id parameters. These are part of the vault format contract:
	// changing any of them changes the derived key for the same
	// passphrase and salt, breaking existing vaults.
	argonMemoryKiB = 64 * 1024
	argonTime      = 3
	argonThreads   = 1
)

// Errors
var (
	ErrInvalidKey       = errors.New("key must be 32 bytes")
	ErrInvalidNonce     = errors.New("nonce must be 24 bytes")
	ErrInvalidSalt      = errors.New("salt must be 32 bytes")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// VaultProvider implements Provider with Argon2id and
// XChaCha20-Poly1305.
type VaultProvider struct{}

// NewProvider creates the crypto provider used by the vault engine.
func NewProvider() Provider {
	return &VaultProvider{}
}

// DeriveKey derives a 256-bit key with Argon2id (64 MiB, t=3, p=1).
func (p *VaultProvider) DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("derive key: empty passphrase")
	}
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}

	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemoryKiB, argonThreads, KeySize)
	if len(key) != KeySize {
		return nil, fmt.Errorf("derive key: unexpected length %d", len(key))
	}
	return key, nil
}

// Seal encrypts plaintext, returning ciphertext||tag.
func (p *VaultProvider) Seal(key, nonce, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonce
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Open verifies and decrypts ciphertext||tag. The tag comparison inside
// the AEAD is constant time; on failure no plaintext bytes are returned.
func (p *VaultProvider) Open(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	if len(nonce) != NonceSize {
		return nil, ErrInvalidNonce
	}
	if len(ciphertext) < TagSize {
		return nil, ErrDecryptionFailed
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// NewSalt returns a fresh 32-byte random salt.
func (p *VaultProvider) NewSalt() ([]byte, error) {
	return randomBytes(SaltSize, "salt")
}

// NewNonce returns a fresh 24-byte random nonce. At 192 bits, collision
// for the same key needs on the order of 2^96 writes.
func (p *VaultProvider) NewNonce() ([]byte, error) {
	return randomBytes(NonceSize, "nonce")
}

func randomBytes(n int, what string) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate %s: %w", what, err)
	}
	return b, nil
}
