// Package container implements the on-disk vault framing:
//
//	[version:1][salt:32][nonce:24][ciphertext||tag]
//
// A legacy layout written by older releases omits the version byte.
// Parse accepts both and normalizes them into a single Container.
package container

import (
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/models"
)

// Version is the current container format version.
const Version byte = 0x01

const (
	headerSize       = 1 + crypto.SaltSize + crypto.NonceSize
	legacyHeaderSize = crypto.SaltSize + crypto.NonceSize
)

// Container is the canonical in-memory form of a parsed vault file.
// Legacy records which layout the bytes arrived in; downstream logic
// never branches on it.
type Container struct {
	Version    byte
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
	Legacy     bool
}

// Encode frames salt, nonce and ciphertext in the current version.
func Encode(salt, nonce, ciphertext []byte) []byte {
	out := make([]byte, 0, headerSize+len(ciphertext))
	out = append(out, Version)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out
}

// Parse reads either layout. Detection is deterministic: a first byte
// equal to the current version byte selects the versioned layout,
// anything else falls back to legacy. A well-formed current-version file
// is therefore never misread as legacy.
func Parse(data []byte) (*Container, error) {
	if len(data) < legacyHeaderSize+crypto.TagSize {
		return nil, &models.FormatError{Reason: "vault file too small"}
	}

	offset := 0
	version := byte(0)
	legacy := true
	if data[0] == Version {
		if len(data) < headerSize+crypto.TagSize {
			return nil, &models.FormatError{Reason: "versioned vault file too small"}
		}
		version = data[0]
		offset = 1
		legacy = false
	}

	salt := make([]byte, crypto.SaltSize)
	copy(salt, data[offset:offset+crypto.SaltSize])
	offset += crypto.SaltSize

	nonce := make([]byte, crypto.NonceSize)
	copy(nonce, data[offset:offset+crypto.NonceSize])
	offset += crypto.NonceSize

	ciphertext := make([]byte, len(data)-offset)
	copy(ciphertext, data[offset:])

	return &Container{
		Version:    version,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		Legacy:     legacy,
	}, nil
}

// EncodeLegacy frames without a version byte, producing the
// pre-versioned layout.
func EncodeLegacy(salt, nonce, ciphertext []byte) []byte {
	out := make([]byte, 0, legacyHeaderSize+len(ciphertext))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out
}
