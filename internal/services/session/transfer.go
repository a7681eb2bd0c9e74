package session

import (
	"github.com/TheMichaelB/lockbox/internal/container"
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/models"
)

// EncodedContainer seals the current record set into a self-contained
// container under the session's salt and key with a fresh nonce. The
// result is independently unlockable with the current master
// passphrase; the backup service writes it out as an export.
func (s *Service) EncodedContainer() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return nil, err
	}

	payload, err := models.EncodeRecords(s.records)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(payload)

	nonce, err := s.crypto.NewNonce()
	if err != nil {
		return nil, err
	}

	sealed, err := s.crypto.Seal(s.key, nonce, payload)
	if err != nil {
		return nil, err
	}

	s.lastActivity = s.clock()
	return container.Encode(s.salt, nonce, sealed), nil
}

// ReplaceRecords swaps in a new record set (from an imported backup) and
// persists it under the session's own key through the normal atomic
// path. On persist failure the previous records are restored and the
// active vault is unchanged.
func (s *Service) ReplaceRecords(records []models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return err
	}

	prev := s.records
	s.records = records

	if err := s.persistLocked(); err != nil {
		s.records = prev
		return err
	}

	s.lastActivity = s.clock()
	s.logger.WithField("records", len(records)).Info("Record set replaced")
	return nil
}
