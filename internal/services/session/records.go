package session

import (
	"time"

	"github.com/TheMichaelB/lockbox/internal/models"
)

// List returns all records with secrets omitted.
func (s *Service) List() ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return nil, err
	}
	s.lastActivity = s.clock()

	out := make([]models.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Redacted())
	}
	return out, nil
}

// Add creates a record, persists the vault and returns the redacted
// record. The in-memory change is rolled back if persisting fails.
func (s *Service) Add(in models.RecordInput) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return models.Record{}, err
	}
	if err := in.Validate(); err != nil {
		return models.Record{}, err
	}

	rec := models.NewRecord(in, s.clock())
	s.records = append(s.records, rec)

	if err := s.persistLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return models.Record{}, err
	}

	s.lastActivity = s.clock()
	s.logger.WithField("record_id", rec.ID).Info("Record added")
	return rec.Redacted(), nil
}

// Update applies a partial update to a record and persists the vault.
func (s *Service) Update(id string, upd models.RecordUpdate) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return models.Record{}, err
	}
	if err := upd.Validate(); err != nil {
		return models.Record{}, err
	}

	idx := s.findLocked(id)
	if idx < 0 {
		return models.Record{}, models.ErrRecordNotFound
	}

	prev := s.records[idx]
	s.records[idx].Apply(upd, s.clock())

	if err := s.persistLocked(); err != nil {
		s.records[idx] = prev
		return models.Record{}, err
	}

	s.lastActivity = s.clock()
	s.logger.WithField("record_id", id).Info("Record updated")
	return s.records[idx].Redacted(), nil
}

// Delete removes a record and persists the vault.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return err
	}

	idx := s.findLocked(id)
	if idx < 0 {
		return models.ErrRecordNotFound
	}

	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)

	if err := s.persistLocked(); err != nil {
		s.records = append(s.records[:idx], append([]models.Record{removed}, s.records[idx:]...)...)
		return err
	}

	s.lastActivity = s.clock()
	s.logger.WithField("record_id", id).Info("Record deleted")
	return nil
}

// CopySecret places a record's secret on the clipboard and schedules a
// clear. A newer copy supersedes any pending clear timer instead of
// stacking a second one. If the process exits before the delay elapses
// the secret stays on the clipboard; clearing is best effort.
func (s *Service) CopySecret(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureUnlockedLocked(); err != nil {
		return err
	}

	idx := s.findLocked(id)
	if idx < 0 {
		return models.ErrRecordNotFound
	}

	if err := s.clip.Copy(s.records[idx].Secret); err != nil {
		return err
	}
	s.lastActivity = s.clock()

	if s.clipTimer != nil {
		s.clipTimer.Stop()
	}
	logger := s.logger
	clip := s.clip
	s.clipTimer = time.AfterFunc(s.clipDelay, func() {
		if err := clip.Clear(); err != nil {
			logger.WithError(err).Warn("Clipboard clear failed")
			return
		}
		logger.Debug("Clipboard cleared")
	})

	s.logger.WithField("record_id", id).Info("Secret copied to clipboard")
	return nil
}

// ClearClipboard cancels any pending timer and clears the sink now.
func (s *Service) ClearClipboard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clipTimer != nil {
		s.clipTimer.Stop()
		s.clipTimer = nil
	}
	return s.clip.Clear()
}

func (s *Service) findLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
