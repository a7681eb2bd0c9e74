package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/lockbox/internal/clipboard"
	"github.com/TheMichaelB/lockbox/internal/container"
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/models"
	"github.com/TheMichaelB/lockbox/internal/services/guard"
	"github.com/TheMichaelB/lockbox/internal/services/session"
	"github.com/TheMichaelB/lockbox/internal/storage"
	"github.com/TheMichaelB/lockbox/test/testutil"
)

type engine struct {
	svc   *session.Service
	clip  *clipboard.Mock
	guard *guard.Guard
	path  string
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	return newEngineWithGuard(t, guard.New())
}

func newEngineWithGuard(t *testing.T, g *guard.Guard) *engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.dat")
	logger := testutil.NewTestLogger()
	clip := clipboard.NewMock()
	svc := session.NewService(path, storage.NewFileStore(logger),
		crypto.NewProvider(), g, clip, logger)
	return &engine{svc: svc, clip: clip, guard: g, path: path}
}

func TestCreate(t *testing.T) {
	t.Run("creates and leaves session unlocked", func(t *testing.T) {
		e := newEngine(t)

		require.NoError(t, e.svc.Create(testutil.TestPassphrase))

		status := e.svc.Status()
		assert.True(t, status.VaultExists)
		assert.True(t, status.Unlocked)
		assert.Zero(t, status.RecordCount)

		records, err := e.svc.List()
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("refuses when a vault file exists", func(t *testing.T) {
		e := newEngine(t)
		require.NoError(t, e.svc.Create(testutil.TestPassphrase))
		e.svc.Lock()

		err := e.svc.Create(testutil.AltPassphrase)
		assert.ErrorIs(t, err, models.ErrVaultExists)
	})

	t.Run("applies the passphrase policy", func(t *testing.T) {
		e := newEngine(t)
		err := e.svc.Create("password")
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
		assert.False(t, e.svc.Status().VaultExists)
	})
}

func TestUnlock(t *testing.T) {
	t.Run("round trips through lock", func(t *testing.T) {
		e := newEngine(t)
		require.NoError(t, e.svc.Create(testutil.TestPassphrase))

		_, err := e.svc.Add(testutil.SampleInput(1))
		require.NoError(t, err)

		e.svc.Lock()
		assert.False(t, e.svc.Status().Unlocked)

		_, err = e.svc.List()
		assert.ErrorIs(t, err, models.ErrVaultLocked)

		require.NoError(t, e.svc.Unlock(testutil.TestPassphrase))
		records, err := e.svc.List()
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		e := newEngine(t)
		require.NoError(t, e.svc.Create(testutil.TestPassphrase))
		e.svc.Lock()

		err := e.svc.Unlock("definitely not the passphrase")
		assert.ErrorIs(t, err, models.ErrIncorrectPassphrase)
		assert.False(t, e.svc.Status().Unlocked)
	})

	t.Run("missing vault file", func(t *testing.T) {
		e := newEngine(t)
		err := e.svc.Unlock(testutil.TestPassphrase)
		assert.ErrorIs(t, err, models.ErrVaultNotFound)
	})

	t.Run("tampered ciphertext reads as incorrect passphrase", func(t *testing.T) {
		e := newEngine(t)
		require.NoError(t, e.svc.Create(testutil.TestPassphrase))
		_, err := e.svc.Add(testutil.SampleInput(1))
		require.NoError(t, err)
		e.svc.Lock()

		data, err := os.ReadFile(e.path)
		require.NoError(t, err)
		data[len(data)-1] ^= 0x01
		require.NoError(t, os.WriteFile(e.path, data, 0o600))

		err = e.svc.Unlock(testutil.TestPassphrase)
		assert.ErrorIs(t, err, models.ErrIncorrectPassphrase,
			"corruption and wrong passphrase are indistinguishable")
	})
}

func TestLockout(t *testing.T) {
	clk := struct{ now time.Time }{now: time.Now()}
	g := guard.NewWithClock(func() time.Time { return clk.now })
	e := newEngineWithGuard(t, g)

	require.NoError(t, e.svc.Create(testutil.TestPassphrase))
	e.svc.Lock()

	for i := 0; i < guard.MaxFailures; i++ {
		err := e.svc.Unlock("wrong passphrase here")
		assert.ErrorIs(t, err, models.ErrIncorrectPassphrase)
	}

	t.Run("correct passphrase still refused during the window", func(t *testing.T) {
		err := e.svc.Unlock(testutil.TestPassphrase)
		var lockout *models.LockoutError
		require.ErrorAs(t, err, &lockout)
		assert.Greater(t, lockout.Remaining, time.Duration(0))
	})

	t.Run("window expiry allows the correct passphrase", func(t *testing.T) {
		clk.now = clk.now.Add(guard.LockoutDuration + time.Second)
		require.NoError(t, e.svc.Unlock(testutil.TestPassphrase))
	})
}

func TestRecordOperations(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.svc.Create(testutil.TestPassphrase))

	var id string

	t.Run("add returns a redacted record", func(t *testing.T) {
		rec, err := e.svc.Add(testutil.SampleInput(1))
		require.NoError(t, err)

		assert.NotEmpty(t, rec.ID)
		assert.Empty(t, rec.Secret)
		assert.False(t, rec.CreatedAt.IsZero())
		id = rec.ID
	})

	t.Run("add validates input", func(t *testing.T) {
		_, err := e.svc.Add(models.RecordInput{Title: ""})
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("list omits secrets", func(t *testing.T) {
		_, err := e.svc.Add(testutil.SampleInput(2))
		require.NoError(t, err)

		records, err := e.svc.List()
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Empty(t, r.Secret)
		}
	})

	t.Run("update changes only supplied fields", func(t *testing.T) {
		newTitle := "Renamed"
		rec, err := e.svc.Update(id, models.RecordUpdate{Title: &newTitle})
		require.NoError(t, err)

		assert.Equal(t, "Renamed", rec.Title)
		assert.Equal(t, testutil.SampleInput(1).Username, rec.Username)
		assert.True(t, rec.UpdatedAt.After(rec.CreatedAt) || rec.UpdatedAt.Equal(rec.CreatedAt))

		// Secret survives an update that does not supply one.
		require.NoError(t, e.svc.CopySecret(id))
		assert.Equal(t, testutil.SampleInput(1).Secret, e.clip.Contents())
	})

	t.Run("update unknown id", func(t *testing.T) {
		title := "x"
		_, err := e.svc.Update("no-such-id", models.RecordUpdate{Title: &title})
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})

	t.Run("delete removes and persists", func(t *testing.T) {
		require.NoError(t, e.svc.Delete(id))

		records, err := e.svc.List()
		require.NoError(t, err)
		assert.Len(t, records, 1)

		assert.ErrorIs(t, e.svc.Delete(id), models.ErrRecordNotFound)
	})

	t.Run("mutations survive a lock and unlock", func(t *testing.T) {
		e.svc.Lock()
		require.NoError(t, e.svc.Unlock(testutil.TestPassphrase))

		records, err := e.svc.List()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, testutil.SampleInput(2).Title, records[0].Title)
	})
}

func TestPersistFailureRollsBack(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.svc.Create(testutil.TestPassphrase))

	rec, err := e.svc.Add(testutil.SampleInput(1))
	require.NoError(t, err)

	// Make the atomic rename fail by putting a directory where the
	// vault file lives.
	require.NoError(t, os.Remove(e.path))
	require.NoError(t, os.Mkdir(e.path, 0o700))

	t.Run("failed add leaves memory unchanged", func(t *testing.T) {
		_, err := e.svc.Add(testutil.SampleInput(2))
		var ioErr *models.IOError
		require.ErrorAs(t, err, &ioErr)

		records, listErr := e.svc.List()
		require.NoError(t, listErr)
		assert.Len(t, records, 1)
	})

	t.Run("failed update leaves the record unchanged", func(t *testing.T) {
		title := "Changed"
		_, err := e.svc.Update(rec.ID, models.RecordUpdate{Title: &title})
		require.Error(t, err)

		records, listErr := e.svc.List()
		require.NoError(t, listErr)
		assert.Equal(t, testutil.SampleInput(1).Title, records[0].Title)
	})

	t.Run("failed delete keeps the record", func(t *testing.T) {
		require.Error(t, e.svc.Delete(rec.ID))

		records, listErr := e.svc.List()
		require.NoError(t, listErr)
		assert.Len(t, records, 1)
	})
}

func TestCopySecret(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.svc.Create(testutil.TestPassphrase))

	rec, err := e.svc.Add(testutil.SampleInput(7))
	require.NoError(t, err)

	t.Run("copies the secret to the clipboard", func(t *testing.T) {
		require.NoError(t, e.svc.CopySecret(rec.ID))
		assert.Equal(t, testutil.SampleInput(7).Secret, e.clip.Contents())
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, e.svc.CopySecret("nope"), models.ErrRecordNotFound)
	})

	t.Run("explicit clear empties the sink", func(t *testing.T) {
		require.NoError(t, e.svc.CopySecret(rec.ID))
		require.NoError(t, e.svc.ClearClipboard())
		assert.Empty(t, e.clip.Contents())
	})
}

func TestChangeMasterPassphrase(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.svc.Create(testutil.TestPassphrase))

	_, err := e.svc.Add(testutil.SampleInput(1))
	require.NoError(t, err)

	t.Run("wrong current passphrase", func(t *testing.T) {
		err := e.svc.ChangeMasterPassphrase("not the current one", testutil.AltPassphrase)
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("weak new passphrase", func(t *testing.T) {
		err := e.svc.ChangeMasterPassphrase(testutil.TestPassphrase, "password")
		require.Error(t, err)
		assert.True(t, models.IsValidation(err))
	})

	t.Run("rotation swaps which passphrase unlocks", func(t *testing.T) {
		require.NoError(t, e.svc.ChangeMasterPassphrase(testutil.TestPassphrase, testutil.AltPassphrase))
		e.svc.Lock()

		err := e.svc.Unlock(testutil.TestPassphrase)
		assert.ErrorIs(t, err, models.ErrIncorrectPassphrase)

		require.NoError(t, e.svc.Unlock(testutil.AltPassphrase))
		records, err := e.svc.List()
		require.NoError(t, err)
		assert.Len(t, records, 1, "record set unchanged by rotation")
	})
}

func TestLegacyLayout(t *testing.T) {
	logger := testutil.NewTestLogger()
	provider := crypto.NewProvider()
	store := storage.NewFileStore(logger)

	salt, err := provider.NewSalt()
	require.NoError(t, err)
	salt[0] = 0xA7 // keep the legacy salt distinguishable from a version byte

	key, err := provider.DeriveKey(testutil.TestPassphrase, salt)
	require.NoError(t, err)

	records := testutil.SampleRecords(2)
	payload, err := models.EncodeRecords(records)
	require.NoError(t, err)

	nonce, err := provider.NewNonce()
	require.NoError(t, err)
	sealed, err := provider.Seal(key, nonce, payload)
	require.NoError(t, err)

	unlockAndList := func(t *testing.T, data []byte) []models.Record {
		path := filepath.Join(t.TempDir(), "vault.dat")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		svc := session.NewService(path, store, provider, guard.New(),
			clipboard.NewMock(), logger)
		require.NoError(t, svc.Unlock(testutil.TestPassphrase))

		listed, err := svc.List()
		require.NoError(t, err)
		return listed
	}

	legacy := unlockAndList(t, container.EncodeLegacy(salt, nonce, sealed))
	versioned := unlockAndList(t, container.Encode(salt, nonce, sealed))

	assert.Equal(t, versioned, legacy, "both layouts decrypt to the same records")
	assert.Len(t, legacy, 2)
}
