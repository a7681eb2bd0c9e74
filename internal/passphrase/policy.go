// Package passphrase applies the master passphrase policy.
package passphrase

import (
	zxcvbn "github.com/nbutton23/zxcvbn-go"

	"github.com/TheMichaelB/lockbox/internal/models"
)

const (
	// MinLength is the minimum master passphrase length.
	MinLength = 8
	// minScore is the minimum zxcvbn score (0-4).
	minScore = 2
)

// Validate applies the master passphrase policy requirements.
func Validate(pw string) error {
	if len(pw) < MinLength {
		return &models.ValidationError{
			Field:  "passphrase",
			Reason: "must be at least 8 characters long",
		}
	}
	if zxcvbn.PasswordStrength(pw, nil).Score < minScore {
		return &models.ValidationError{
			Field:  "passphrase",
			Reason: "too guessable, choose a stronger passphrase",
		}
	}
	return nil
}

// ValidateWithConfirmation also checks that the confirmation matches.
func ValidateWithConfirmation(pw, confirm string) error {
	if pw != confirm {
		return &models.ValidationError{
			Field:  "passphrase",
			Reason: "confirmation does not match",
		}
	}
	return Validate(pw)
}
