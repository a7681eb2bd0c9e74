// Package backup exports and imports independently encrypted copies of
// the record set.
package backup

import (
	"errors"

	"github.com/TheMichaelB/lockbox/internal/container"
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/events"
	"github.com/TheMichaelB/lockbox/internal/models"
	"github.com/TheMichaelB/lockbox/internal/services/session"
	"github.com/TheMichaelB/lockbox/internal/storage"
)

const backupFileMode = 0o600

// Service handles backup transfer operations.
type Service struct {
	session *session.Service
	store   *storage.FileStore
	crypto  crypto.Provider
	logger  *events.Logger
}

// NewService creates a backup service.
func NewService(sess *session.Service, store *storage.FileStore,
	provider crypto.Provider, logger *events.Logger) *Service {
	return &Service{
		session: sess,
		store:   store,
		crypto:  provider,
		logger:  logger.WithField("service", "backup"),
	}
}

// Export writes a self-contained encrypted copy of the current record
// set to destPath. The copy reuses the session's salt and key with a
// fresh nonce, so it unlocks with the current master passphrase.
func (s *Service) Export(destPath string) error {
	data, err := s.session.EncodedContainer()
	if err != nil {
		return err
	}

	if err := s.store.WriteAtomic(destPath, data, backupFileMode); err != nil {
		return err
	}

	s.logger.WithField("path", destPath).Info("Vault exported")
	return nil
}

// Import unlocks the backup at sourcePath with the provided passphrase
// (which may differ from the active vault's) and replaces the active
// record set, persisting under the active vault's own key. Any failure
// before that final persist leaves the active vault untouched.
func (s *Service) Import(sourcePath, pass string) error {
	data, err := s.store.Read(sourcePath)
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
	defer crypto.Zero(key)

	plaintext, err := s.crypto.Open(key, cont.Nonce, cont.Ciphertext)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			return models.ErrIncorrectPassphrase
		}
		return err
	}
	defer crypto.Zero(plaintext)

	records, err := models.DecodeRecords(plaintext)
	if err != nil {
		return err
	}

	if err := s.session.ReplaceRecords(records); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"path":    sourcePath,
		"records": len(records),
	}).Info("Vault imported")
	return nil
}
