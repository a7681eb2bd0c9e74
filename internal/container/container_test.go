package container_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/lockbox/internal/container"
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/models"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestEncodeParse(t *testing.T) {
	salt := randomBytes(t, crypto.SaltSize)
	nonce := randomBytes(t, crypto.NonceSize)
	ciphertext := randomBytes(t, 48)

	t.Run("round trip", func(t *testing.T) {
		data := container.Encode(salt, nonce, ciphertext)
		assert.Equal(t, container.Version, data[0])

		cont, err := container.Parse(data)
		require.NoError(t, err)

		assert.Equal(t, container.Version, cont.Version)
		assert.Equal(t, salt, cont.Salt)
		assert.Equal(t, nonce, cont.Nonce)
		assert.Equal(t, ciphertext, cont.Ciphertext)
		assert.False(t, cont.Legacy)
	})

	t.Run("legacy layout normalizes to the same triple", func(t *testing.T) {
		// Force a salt that cannot be confused with the version byte.
		legacySalt := randomBytes(t, crypto.SaltSize)
		legacySalt[0] = 0xA7

		data := container.EncodeLegacy(legacySalt, nonce, ciphertext)
		cont, err := container.Parse(data)
		require.NoError(t, err)

		assert.Equal(t, legacySalt, cont.Salt)
		assert.Equal(t, nonce, cont.Nonce)
		assert.Equal(t, ciphertext, cont.Ciphertext)
		assert.True(t, cont.Legacy)
	})

	t.Run("current version file is never classified legacy", func(t *testing.T) {
		data := container.Encode(salt, nonce, ciphertext)
		cont, err := container.Parse(data)
		require.NoError(t, err)
		assert.False(t, cont.Legacy)
	})

	t.Run("parse copies do not alias the input", func(t *testing.T) {
		data := container.Encode(salt, nonce, ciphertext)
		cont, err := container.Parse(data)
		require.NoError(t, err)

		for i := range data {
			data[i] = 0
		}
		assert.Equal(t, salt, cont.Salt)
		assert.Equal(t, ciphertext, cont.Ciphertext)
	})
}

func TestParseErrors(t *testing.T) {
	var formatErr *models.FormatError

	t.Run("empty input", func(t *testing.T) {
		_, err := container.Parse(nil)
		require.Error(t, err)
		assert.ErrorAs(t, err, &formatErr)
	})

	t.Run("below minimal legacy size", func(t *testing.T) {
		_, err := container.Parse(bytes.Repeat([]byte{0xA7}, crypto.SaltSize+crypto.NonceSize))
		require.Error(t, err)
		assert.ErrorAs(t, err, &formatErr)
	})

	t.Run("versioned header without room for payload", func(t *testing.T) {
		data := make([]byte, 1+crypto.SaltSize+crypto.NonceSize+crypto.TagSize-1)
		data[0] = container.Version
		_, err := container.Parse(data)
		require.Error(t, err)
		assert.ErrorAs(t, err, &formatErr)
	})
}
