// Package profile persists the local user profile: the cached credit
// balance, preferences and purchase bookkeeping.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flygen/internal/storage"
)

const profileFile = "profile.json"

// Profile is the locally persisted record for one user.
type Profile struct {
	UserID               string    `json:"user_id"`
	Credits              int       `json:"credits"`
	UnsyncedDelta        int       `json:"unsynced_delta"`
	PreferredCategories  []string  `json:"preferred_categories"`
	RedeemedTransactions []string  `json:"redeemed_transactions"`
	SubscriptionProduct  string    `json:"subscription_product,omitempty"`
	SubscriptionExpires  time.Time `json:"subscription_expires,omitempty"`
	LastSyncedAt         time.Time `json:"last_synced_at,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// HasRedeemed reports whether transactionID was already granted.
func (p *Profile) HasRedeemed(transactionID string) bool {
	for _, id := range p.RedeemedTransactions {
		if id == transactionID {
			return true
		}
	}
	return false
}

// Store loads and saves profiles.
type Store interface {
	Load(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}

// FileStore keeps one JSON document per user on a storage.FileStore.
type FileStore struct {
	files          *storage.FileStore
	starterCredits int
}

// NewFileStore returns a profile store. Users without a profile start with
// starterCredits.
func NewFileStore(files *storage.FileStore, starterCredits int) *FileStore {
	return &FileStore{files: files, starterCredits: starterCredits}
}

func (s *FileStore) Load(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, errors.New("profile: user id is required")
	}
	raw, err := s.files.Read(ctx, storage.UserKey(userID, profileFile))
	if errors.Is(err, storage.ErrNotFound) {
		return &Profile{UserID: userID, Credits: s.starterCredits, UpdatedAt: time.Now().UTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile: load: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profile: decode: %w", err)
	}
	p.UserID = userID
	return &p, nil
}

func (s *FileStore) Save(ctx context.Context, p *Profile) error {
	if p == nil || p.UserID == "" {
		return errors.New("profile: user id is required")
	}
	p.UpdatedAt = time.Now().UTC()
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("profile: encode: %w", err)
	}
	if _, err := s.files.Write(ctx, storage.UserKey(p.UserID, profileFile), raw); err != nil {
		return fmt.Errorf("profile: save: %w", err)
	}
	return nil
}
