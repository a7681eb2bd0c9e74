package crypto

// Provider handles all cryptographic operations for the vault engine.
type Provider interface {
	// DeriveKey derives the symmetric key from a passphrase and salt.
	// It is deterministic and deliberately expensive.
	DeriveKey(passphrase string, salt []byte) ([]byte, error)

	// Seal encrypts and authenticates plaintext under key and a
	// caller-supplied fresh nonce, returning ciphertext||tag.
	Seal(key, nonce, plaintext []byte) ([]byte, error)

	// Open authenticates and decrypts ciphertext||tag. It returns
	// ErrDecryptionFailed without any plaintext if the tag does not
	// verify.
	Open(key, nonce, ciphertext []byte) ([]byte, error)

	// NewSalt returns a fresh random key-derivation salt.
	NewSalt() ([]byte, error)

	// NewNonce returns a fresh random nonce for Seal.
	NewNonce() ([]byte, error)
}
