package session

import (
	"context"
	"time"
)

// StartAutoLock runs the background inactivity monitor until ctx is
// canceled. It bounds idle time even when no operations arrive; the poll
// takes the same lock as every mutation, so a timeout transition never
// interleaves with an in-flight operation.
func (s *Service) StartAutoLock(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				s.autoLockIfIdle()
				s.mu.Unlock()
			}
		}
	}()
}
