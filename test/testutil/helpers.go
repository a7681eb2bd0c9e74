// Package testutil provides shared helpers for engine tests.
package testutil

import (
	"fmt"
	"io"
	"time"

	"github.com/TheMichaelB/lockbox/internal/events"
	"github.com/TheMichaelB/lockbox/internal/models"
)

// TestPassphrase satisfies the master passphrase policy.
const TestPassphrase = "correct horse battery staple"

// AltPassphrase is a second policy-compliant passphrase for rotation and
// backup tests.
const AltPassphrase = "rotated stapler horse cavalry"

// NewTestLogger creates a logger that discards output.
func NewTestLogger() *events.Logger {
	return events.NewTestLogger(events.DebugLevel, "json", io.Discard)
}

// SampleInput returns record input with a distinct title suffix.
func SampleInput(n int) models.RecordInput {
	return models.RecordInput{
		Title:    fmt.Sprintf("Service %d", n),
		Username: fmt.Sprintf("user%d@example.com", n),
		Secret:   fmt.Sprintf("hunter%d", n),
		URL:      fmt.Sprintf("https://svc%d.example.com", n),
		Notes:    "test fixture",
	}
}

// SampleRecords builds n complete records.
func SampleRecords(n int) []models.Record {
	now := time.Now().UTC()
	records := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.NewRecord(SampleInput(i), now))
	}
	return records
}
