// Package records is the remote key-value record store that mirrors a
// user's credits and preferences. Records are addressed by a fixed name per
// logical entity and scoped to the signed-in owner.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

const (
	CreditsRecord     = "user-credits-record"
	PreferencesRecord = "user-preferences-record"

	FieldCredits             = "credits"
	FieldPreferredCategories = "preferredCategories"
)

var (
	ErrRecordNotFound = errors.New("records: record not found")
	ErrUnavailable    = errors.New("records: store unavailable")
)

// Record is one named remote record with its JSON attributes.
type Record struct {
	Name       string
	Fields     json.RawMessage
	ModifiedAt time.Time
}

// NewRecord encodes fields into a record.
func NewRecord(name string, fields map[string]any) (Record, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("records: encode %s: %w", name, err)
	}
	return Record{Name: name, Fields: raw}, nil
}

// Int reads an integer attribute.
func (r Record) Int(field string) (int, bool) {
	res := gjson.GetBytes(r.Fields, field)
	if !res.Exists() || res.Type != gjson.Number {
		return 0, false
	}
	return int(res.Int()), true
}

// Strings reads a string list attribute.
func (r Record) Strings(field string) ([]string, bool) {
	res := gjson.GetBytes(r.Fields, field)
	if !res.Exists() || !res.IsArray() {
		return nil, false
	}
	items := res.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == gjson.String {
			out = append(out, item.String())
		}
	}
	return out, true
}

// Store is the owner-scoped view used by the reconciliation protocol.
type Store interface {
	// Available reports whether there is a signed-in owner and the backend
	// answers.
	Available(ctx context.Context) bool
	Fetch(ctx context.Context, name string) (Record, error)
	Save(ctx context.Context, rec Record) error
}

// Backend is a shared multi-owner record backend.
type Backend interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, owner, name string) (Record, error)
	Put(ctx context.Context, owner string, rec Record) error
}

type ownerStore struct {
	backend Backend
	owner   string
}

// ForOwner scopes backend to owner. A nil backend or an empty owner yields a
// store that is never available.
func ForOwner(backend Backend, owner string) Store {
	return &ownerStore{backend: backend, owner: owner}
}

func (s *ownerStore) Available(ctx context.Context) bool {
	if s.backend == nil || s.owner == "" {
		return false
	}
	return s.backend.Ping(ctx) == nil
}

func (s *ownerStore) Fetch(ctx context.Context, name string) (Record, error) {
	if s.backend == nil || s.owner == "" {
		return Record{}, ErrUnavailable
	}
	return s.backend.Get(ctx, s.owner, name)
}

func (s *ownerStore) Save(ctx context.Context, rec Record) error {
	if s.backend == nil || s.owner == "" {
		return ErrUnavailable
	}
	return s.backend.Put(ctx, s.owner, rec)
}
