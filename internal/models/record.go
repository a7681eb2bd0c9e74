package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a stored credential entry. The JSON field names are part of
// the on-disk payload format and must not change.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Secret    string    `json:"password"`
	URL       string    `json:"url"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordInput carries the caller-supplied fields for a new record.
type RecordInput struct {
	Title    string
	Username string
	Secret   string
	URL      string
	Notes    string
}

// Validate checks the input against the record constraints.
func (in *RecordInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// RecordUpdate describes a partial update. Nil fields are left unchanged;
// the secret is replaced only when Secret is non-nil.
type RecordUpdate struct {
	Title    *string
	Username *string
	Secret   *string
	URL      *string
	Notes    *string
}

// Validate rejects updates that would violate record constraints.
func (u *RecordUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return nil
}

// NewRecord creates a record with a generated ID and creation timestamps.
func NewRecord(in RecordInput, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Username:  in.Username,
		Secret:    in.Secret,
		URL:       in.URL,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply merges an update into the record and bumps UpdatedAt.
func (r *Record) Apply(u RecordUpdate, now time.Time) {
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Username != nil {
		r.Username = *u.Username
	}
	if u.Secret != nil {
		r.Secret = *u.Secret
	}
	if u.URL != nil {
		r.URL = *u.URL
	}
	if u.Notes != nil {
		r.Notes = *u.Notes
	}
	r.UpdatedAt = now
}

// Redacted returns a copy of the record with the secret omitted. List and
// query results only ever expose redacted records.
func (r Record) Redacted() Record {
	r.Secret = ""
	return r
}

// EncodeRecords serializes the full record set into the plaintext payload
// that gets sealed into the vault container.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return data, nil
}

// DecodeRecords parses a decrypted payload back into the record set.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &FormatError{Reason: "record payload is not valid JSON"}
	}
	return records, nil
}
