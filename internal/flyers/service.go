// Package flyers generates flyer images from wizard projects and keeps the
// per-user gallery of saved results.
package flyers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flygen/internal/credits"
	"flygen/internal/domain"
	"flygen/internal/infra"
	"flygen/internal/storage"
	"flygen/pkg/zip"

	"github.com/google/uuid"
)

const defaultListLimit = 50

// Outcome labels reported to the OnGenerate hook.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNoCredit = "insufficient_credits"
	OutcomeFailed   = "provider_failure"
)

type Options struct {
	Catalog    domain.Catalog
	Repository domain.FlyerRepository
	Files      *storage.FileStore
	Generator  Generator
	Ledgers    *credits.Registry
	Cost       int
	Timeout    time.Duration
	Logger     infra.Logger
	OnGenerate func(outcome string)
}

type Service struct {
	catalog    domain.Catalog
	repo       domain.FlyerRepository
	files      *storage.FileStore
	generator  Generator
	ledgers    *credits.Registry
	cost       int
	timeout    time.Duration
	logger     infra.Logger
	onGenerate func(string)
}

func NewService(opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	cost := opts.Cost
	if cost <= 0 {
		cost = 1
	}
	return &Service{
		catalog:    opts.Catalog,
		repo:       opts.Repository,
		files:      opts.Files,
		generator:  opts.Generator,
		ledgers:    opts.Ledgers,
		cost:       cost,
		timeout:    timeout,
		logger:     opts.Logger,
		onGenerate: opts.OnGenerate,
	}
}

// Cost is the number of credits one generation debits.
func (s *Service) Cost() int { return s.cost }

// Result is a finished generation.
type Result struct {
	Flyer   *domain.SavedFlyer `json:"flyer"`
	Balance credits.Balance    `json:"balance"`
}

// Generate validates the project, debits the generation cost and renders
// the flyer. The debit is refunded when rendering or persistence fails.
func (s *Service) Generate(ctx context.Context, userID string, project *domain.Project) (*Result, error) {
	if !project.ValidForGeneration(s.catalog) {
		s.report(OutcomeInvalid)
		missing := project.MissingRequired(s.catalog)
		return nil, fmt.Errorf("%w: missing %v", domain.ErrInvalidProject, missing)
	}
	ledger := s.ledgers.For(userID)
	if _, err := ledger.Deduct(ctx, s.cost); err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			s.report(OutcomeNoCredit)
		}
		return nil, err
	}

	flyer, err := s.render(ctx, userID, project)
	if err != nil {
		s.report(OutcomeFailed)
		refundCtx := context.WithoutCancel(ctx)
		if _, rerr := ledger.Grant(refundCtx, s.cost); rerr != nil {
			s.logger.Error().Err(rerr).Str("user_id", userID).Msg("flyers: refund failed")
		}
		return nil, err
	}
	bal, err := ledger.Balance(ctx)
	if err != nil {
		return nil, err
	}
	s.report(OutcomeSuccess)
	return &Result{Flyer: flyer, Balance: bal}, nil
}

func (s *Service) render(ctx context.Context, userID string, project *domain.Project) (*domain.SavedFlyer, error) {
	prompt := BuildFlyerPrompt(project)
	id := uuid.NewString()

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	img, err := s.generator.Generate(gctx, GenerateRequest{
		Prompt:      prompt,
		AspectRatio: project.Output.AspectRatio,
		RequestID:   id,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Dur("elapsed", time.Since(start)).Msg("flyers: generation failed")
		if errors.Is(err, domain.ErrProviderFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrProviderFailure)
	}
	mime := coalesce(img.MIME, "image/png")
	key, err := s.files.Write(ctx, storage.UserKey(userID, "flyers", id+extensionFor(mime)), img.Data)
	if err != nil {
		return nil, fmt.Errorf("flyers: store image: %w", err)
	}
	flyer := &domain.SavedFlyer{
		ID:          id,
		UserID:      userID,
		ProjectID:   project.ID,
		Category:    project.Category,
		Headline:    project.Value(domain.FieldHeadline),
		AspectRatio: coalesce(project.Output.AspectRatio, domain.DefaultAspectRatio),
		Prompt:      prompt,
		ImageKey:    key,
		MIME:        mime,
		Bytes:       int64(len(img.Data)),
		CreditsUsed: s.cost,
	}
	if err := s.repo.Create(ctx, flyer); err != nil {
		_ = s.files.Delete(context.WithoutCancel(ctx), key)
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("flyer_id", id).Str("provider", img.Provider).Dur("elapsed", time.Since(start)).Msg("flyer generated")
	return flyer, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.SavedFlyer, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// Image returns the stored bytes for one flyer.
func (s *Service) Image(ctx context.Context, userID, id string) (*domain.SavedFlyer, []byte, error) {
	flyer, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.files.Read(ctx, flyer.ImageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return flyer, data, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	flyer, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.files.Delete(ctx, flyer.ImageKey); err != nil {
		s.logger.Warn().Err(err).Str("key", flyer.ImageKey).Msg("flyers: delete image")
	}
	return nil
}

// Export packs every saved flyer image of the user into one zip archive.
// Flyers whose image file is gone are skipped.
func (s *Service) Export(ctx context.Context, userID string) ([]byte, int, error) {
	items, err := s.repo.ListByUser(ctx, userID, 1000)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]zip.Entry, 0, len(items))
	for _, item := range items {
		data, err := s.files.Read(ctx, item.ImageKey)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, zip.Entry{
			Filename: exportName(item),
			Data:     data,
			Modified: item.CreatedAt,
		})
	}
	archive, err := zip.Archive(entries)
	if err != nil {
		return nil, 0, err
	}
	return archive, len(entries), nil
}

func exportName(f domain.SavedFlyer) string {
	base := strings.ToLower(strings.TrimSpace(f.Headline))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = string(f.Category)
	}
	return name + extensionFor(f.MIME)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func (s *Service) report(outcome string) {
	if s.onGenerate != nil {
		s.onGenerate(outcome)
	}
}
