package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors
var (
	ErrVaultExists    = errors.New("vault already exists")
	ErrVaultNotFound  = errors.New("vault not found")
	ErrVaultLocked    = errors.New("vault is locked")
	ErrRecordNotFound = errors.New("record not found")

	// ErrIncorrectPassphrase covers both a wrong passphrase and a tampered
	// or corrupted ciphertext. The two causes are deliberately
	// indistinguishable to the caller.
	ErrIncorrectPassphrase = errors.New("incorrect passphrase or corrupted vault")
)

// LockoutError reports that unlock attempts are refused until the lockout
// window expires.
type LockoutError struct {
	Remaining time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("too many failed attempts, locked out for %ds",
		int(e.Remaining.Round(time.Second).Seconds()))
}

// FormatError reports a malformed vault container.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid vault format: %s", e.Reason)
}

// IOError reports a failed read, write, or rename of a vault file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ValidationError reports rejected caller input, such as an empty title or
// a passphrase below the minimum strength.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
