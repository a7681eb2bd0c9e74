// Package clipboard abstracts the system clipboard so the session
// service can copy secrets and clear them on a timer without a direct
// platform dependency.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard is the single external sink a secret may be exposed to.
type Clipboard interface {
	Copy(text string) error
	Clear() error
}

// System uses the OS clipboard.
type System struct{}

// NewSystem creates the system clipboard.
func NewSystem() *System {
	return &System{}
}

// Copy places text on the system clipboard.
func (s *System) Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Clear overwrites the clipboard with an empty string. Best effort: a
// clipboard manager may retain history beyond our reach.
func (s *System) Clear() error {
	if err := clipboard.WriteAll(""); err != nil {
		return fmt.Errorf("clear clipboard: %w", err)
	}
	return nil
}
