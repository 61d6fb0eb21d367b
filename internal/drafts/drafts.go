// Package drafts keeps the single in-progress flyer draft of each user as a
// JSON document plus up to two binary side files.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flygen/internal/domain"
	"flygen/internal/storage"
	"flygen/internal/wizard"
)

const (
	metadataFile = "flyer-draft.json"
	logoFile     = "flyer-draft-logo.bin"
	photoFile    = "flyer-draft-photo.bin"
)

var ErrNoDraft = errors.New("drafts: no saved draft")

// Draft is a restored draft.
type Draft struct {
	Project *domain.Project `json:"project"`
	Step    wizard.Step     `json:"step"`
	SavedAt time.Time       `json:"saved_at"`
}

type metadata struct {
	Project  *domain.Project `json:"project"`
	Step     wizard.Step     `json:"step"`
	HasLogo  bool            `json:"has_logo"`
	HasPhoto bool            `json:"has_photo"`
	SavedAt  time.Time       `json:"saved_at"`
}

type Store struct {
	files *storage.FileStore
}

func NewStore(files *storage.FileStore) *Store {
	return &Store{files: files}
}

// Save replaces the user's draft. Only the first user photo is kept.
func (s *Store) Save(ctx context.Context, userID string, project *domain.Project, step wizard.Step) (*Draft, error) {
	if project == nil {
		return nil, fmt.Errorf("%w: nil project", domain.ErrInvalidProject)
	}
	if !step.Valid() {
		return nil, wizard.ErrInvalidStep
	}
	p := project.Clone()
	meta := metadata{Step: step, SavedAt: time.Now().UTC()}

	if p.Logo != nil && len(p.Logo.Data) > 0 {
		if _, err := s.files.Write(ctx, storage.UserKey(userID, logoFile), p.Logo.Data); err != nil {
			return nil, fmt.Errorf("drafts: write logo: %w", err)
		}
		meta.HasLogo = true
		p.Logo.Data = nil
	} else if err := s.files.Delete(ctx, storage.UserKey(userID, logoFile)); err != nil {
		return nil, err
	}

	if len(p.Imagery.Photos) > 0 && len(p.Imagery.Photos[0]) > 0 {
		if _, err := s.files.Write(ctx, storage.UserKey(userID, photoFile), p.Imagery.Photos[0]); err != nil {
			return nil, fmt.Errorf("drafts: write photo: %w", err)
		}
		meta.HasPhoto = true
	} else if err := s.files.Delete(ctx, storage.UserKey(userID, photoFile)); err != nil {
		return nil, err
	}
	p.Imagery.Photos = nil
	meta.Project = p

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("drafts: encode: %w", err)
	}
	if _, err := s.files.Write(ctx, storage.UserKey(userID, metadataFile), raw); err != nil {
		return nil, fmt.Errorf("drafts: write metadata: %w", err)
	}
	return &Draft{Project: project.Clone(), Step: step, SavedAt: meta.SavedAt}, nil
}

// Load restores the draft including its binary attachments.
func (s *Store) Load(ctx context.Context, userID string) (*Draft, error) {
	raw, err := s.files.Read(ctx, storage.UserKey(userID, metadataFile))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, fmt.Errorf("drafts: read metadata: %w", err)
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("drafts: decode: %w", err)
	}
	if meta.Project == nil {
		return nil, ErrNoDraft
	}
	p := meta.Project
	if p.Text == nil {
		p.Text = make(map[domain.TextField]string)
	}
	if meta.HasLogo && p.Logo != nil {
		data, err := s.files.Read(ctx, storage.UserKey(userID, logoFile))
		switch {
		case errors.Is(err, storage.ErrNotFound):
			p.Logo = nil
		case err != nil:
			return nil, fmt.Errorf("drafts: read logo: %w", err)
		default:
			p.Logo.Data = data
		}
	}
	if meta.HasPhoto {
		data, err := s.files.Read(ctx, storage.UserKey(userID, photoFile))
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return nil, fmt.Errorf("drafts: read photo: %w", err)
		default:
			p.Imagery.Photos = [][]byte{data}
		}
	}
	step := meta.Step
	if !step.Valid() {
		step = wizard.StepTextContent
	}
	return &Draft{Project: p, Step: step, SavedAt: meta.SavedAt}, nil
}

// Delete removes the draft and its attachments. Missing files are ignored.
func (s *Store) Delete(ctx context.Context, userID string) error {
	for _, name := range []string{metadataFile, logoFile, photoFile} {
		if err := s.files.Delete(ctx, storage.UserKey(userID, name)); err != nil {
			return fmt.Errorf("drafts: delete %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	return s.files.Exists(ctx, storage.UserKey(userID, metadataFile))
}
