// Package session holds the in-memory unlocked vault state and
// orchestrates every read and mutation against it. All operations
// serialize behind one mutex: each of them reads and conditionally
// rewrites the same record set and the same vault file.
package session

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/TheMichaelB/lockbox/internal/clipboard"
	"github.com/TheMichaelB/lockbox/internal/container"
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/events"
	"github.com/TheMichaelB/lockbox/internal/models"
	"github.com/TheMichaelB/lockbox/internal/passphrase"
	"github.com/TheMichaelB/lockbox/internal/services/guard"
	"github.com/TheMichaelB/lockbox/internal/storage"
)

const (
	// AutoLockTimeout is the inactivity limit before the session locks.
	AutoLockTimeout = 5 * time.Minute
	// PollInterval is how often the background monitor re-checks.
	PollInterval = 10 * time.Second
	// ClipboardClearDelay is how long a copied secret stays on the
	// clipboard.
	ClipboardClearDelay = 15 * time.Second

	vaultFileMode = 0o600
)

// Service manages the vault session lifecycle.
type Service struct {
	mu sync.Mutex

	path   string
	store  *storage.FileStore
	crypto crypto.Provider
	guard  *guard.Guard
	clip   clipboard.Clipboard
	logger *events.Logger

	unlocked     bool
	key          []byte
	salt         []byte
	records      []models.Record
	createdAt    time.Time
	lastActivity time.Time

	clock     func() time.Time
	clipDelay time.Duration
	clipTimer *time.Timer
}

// Status describes the externally visible session state.
type Status struct {
	VaultExists bool `json:"vault_exists"`
	Unlocked    bool `json:"unlocked"`
	RecordCount int  `json:"record_count"`
}

// NewService creates a session service for the vault at path.
func NewService(path string, store *storage.FileStore, provider crypto.Provider,
	g *guard.Guard, clip clipboard.Clipboard, logger *events.Logger) *Service {
	return &Service{
		path:      path,
		store:     store,
		crypto:    provider,
		guard:     g,
		clip:      clip,
		logger:    logger.WithField("service", "session"),
		clock:     time.Now,
		clipDelay: ClipboardClearDelay,
	}
}

// Create initializes a brand-new vault and leaves the session unlocked
// over an empty record set. It fails if a vault file already exists.
func (s *Service) Create(pass string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Exists(s.path) {
		return models.ErrVaultExists
	}
	if err := passphrase.Validate(pass); err != nil {
		return err
	}

	salt, err := s.crypto.NewSalt()
	if err != nil {
		return err
	}
	key, err := s.crypto.DeriveKey(pass, salt)
	if err != nil {
		return err
	}

	s.key = key
	s.salt = salt
	s.records = []models.Record{}
	s.unlocked = true

	if err := s.persistLocked(); err != nil {
		s.clearLocked()
		return err
	}

	now := s.clock()
	s.createdAt = now
	s.lastActivity = now
	s.logger.Info("Vault created")
	return nil
}

// Unlock loads, authenticates and decrypts the vault. Lockout is checked
// before the expensive key derivation runs.
func (s *Service) Unlock(pass string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if remaining, locked := s.guard.Lockout(); locked {
		return &models.LockoutError{Remaining: remaining}
	}

	data, err := s.store.Read(s.path)
	if err != nil {
		return err
	}

	cont, err := container.Parse(data)
	if err != nil {
		return err
	}

	key, err := s.crypto.DeriveKey(pass, cont.Salt)
	if err != nil {
		return err
	}

	plaintext, err := s.crypto.Open(key, cont.Nonce, cont.Ciphertext)
	if err != nil {
		crypto.Zero(key)
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			// Wrong passphrase and tampered ciphertext are reported
			// identically; distinguishing them would hand an attacker
			// an oracle.
			if dur, engaged := s.guard.RecordFailure(); engaged {
				s.logger.WithField("lockout_seconds", int(dur.Seconds())).
					Warn("Unlock failures exceeded limit")
			}
			return models.ErrIncorrectPassphrase
		}
		return err
	}

	records, err := models.DecodeRecords(plaintext)
	crypto.Zero(plaintext)
	if err != nil {
		crypto.Zero(key)
		return err
	}

	s.guard.RecordSuccess()

	s.clearLocked()
	s.key = key
	s.salt = cont.Salt
	s.records = records
	s.unlocked = true

	now := s.clock()
	s.createdAt = now
	s.lastActivity = now

	s.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"legacy":  cont.Legacy,
	}).Info("Vault unlocked")
	return nil
}

// Lock clears the session. Safe to call in any state; it never fails.
func (s *Service) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return
	}
	s.clearLocked()
	s.logger.Info("Vault locked")
}

// Touch records user activity, resetting the auto-lock clock.
func (s *Service) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unlocked {
		s.lastActivity = s.clock()
	}
}

// Status reports vault presence and session state. The idle check runs
// first so a timed-out session is never reported as unlocked.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.autoLockIfIdle()
	return Status{
		VaultExists: s.store.Exists(s.path),
		Unlocked:    s.unlocked,
		RecordCount: len(s.records),
	}
}

// ChangeMasterPassphrase re-encrypts the vault under a key derived from
// newPass with a brand-new salt. The current passphrase must match the
// session key.
func (s *Service) ChangeMasterPassphrase(current, newPass string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return err
	}

	check, err := s.crypto.DeriveKey(current, s.salt)
	if err != nil {
		return err
	}
	match := subtle.ConstantTimeCompare(check, s.key) == 1
	crypto.Zero(check)
	if !match {
		return &models.ValidationError{
			Field:  "current passphrase",
			Reason: "does not match",
		}
	}

	if err := passphrase.Validate(newPass); err != nil {
		return err
	}

	newSalt, err := s.crypto.NewSalt()
	if err != nil {
		return err
	}
	newKey, err := s.crypto.DeriveKey(newPass, newSalt)
	if err != nil {
		return err
	}

	if err := s.writeUnderLocked(newKey, newSalt); err != nil {
		crypto.Zero(newKey)
		return err
	}

	crypto.Zero(s.key)
	s.key = newKey
	s.salt = newSalt
	s.lastActivity = s.clock()

	s.logger.Info("Master passphrase changed")
	return nil
}

// ensureUnlockedLocked gates every read/mutate operation: an expired
// session is locked immediately and the original request is refused.
func (s *Service) ensureUnlockedLocked() error {
	if !s.unlocked {
		return models.ErrVaultLocked
	}
	if s.clock().Sub(s.lastActivity) > AutoLockTimeout {
		s.clearLocked()
		s.logger.Info("Session expired, vault locked")
		return models.ErrVaultLocked
	}
	return nil
}

// autoLockIfIdle applies the same timeout check without failing.
func (s *Service) autoLockIfIdle() {
	if s.unlocked && s.clock().Sub(s.lastActivity) > AutoLockTimeout {
		s.clearLocked()
		s.logger.Info("Auto-locked after inactivity")
	}
}

// clearLocked wipes session state. The key bytes are zero-overwritten
// before release.
func (s *Service) clearLocked() {
	crypto.Zero(s.key)
	s.key = nil
	s.salt = nil
	s.records = nil
	s.unlocked = false
}

// persistLocked re-serializes the record set, seals it under the session
// key with a fresh nonce and atomically rewrites the vault file.
func (s *Service) persistLocked() error {
	return s.writeUnderLocked(s.key, s.salt)
}

func (s *Service) writeUnderLocked(key, salt []byte) error {
	payload, err := models.EncodeRecords(s.records)
	if err != nil {
		return err
	}
	defer crypto.Zero(payload)

	nonce, err := s.crypto.NewNonce()
	if err != nil {
		return err
	}

	sealed, err := s.crypto.Seal(key, nonce, payload)
	if err != nil {
		return err
	}

	return s.store.WriteAtomic(s.path, container.Encode(salt, nonce, sealed), vaultFileMode)
}
