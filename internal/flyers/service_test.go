package flyers

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"flygen/internal/credits"
	"flygen/internal/domain"
	"flygen/internal/infra"
	"flygen/internal/profile"
	"flygen/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGenerator struct{ err error }

func (g failingGenerator) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedImage, error) {
	return nil, g.err
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedImage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fixture struct {
	svc     *Service
	ledgers *credits.Registry
	files   *storage.FileStore
}

func newFixture(t *testing.T, starter int, gen Generator) fixture {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ledgers := credits.NewRegistry(profile.NewFileStore(files, starter), nil, infra.NopLogger(), nil)
	svc := NewService(Options{
		Catalog:    domain.DefaultCatalog(),
		Repository: NewFileRepository(files),
		Files:      files,
		Generator:  gen,
		Ledgers:    ledgers,
		Cost:       1,
		Timeout:    50 * time.Millisecond,
		Logger:     infra.NopLogger(),
	})
	return fixture{svc: svc, ledgers: ledgers, files: files}
}

func validProject() *domain.Project {
	p := domain.NewProject(domain.CategorySalePromo, domain.DefaultCatalog())
	p.SetText(domain.FieldHeadline, "Summer Clearance")
	p.SetText(domain.FieldDiscountText, "50% OFF")
	return p
}

func credit(t *testing.T, reg *credits.Registry, user string) int {
	t.Helper()
	reg.Wait()
	bal, err := reg.For(user).Balance(context.Background())
	require.NoError(t, err)
	return bal.Credits
}

func TestGenerateStoresFlyerAndDebits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3, NewPlaceholderGenerator())

	res, err := f.svc.Generate(ctx, "alice", validProject())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Balance.Credits)
	assert.Equal(t, "Summer Clearance", res.Flyer.Headline)
	assert.Equal(t, "image/png", res.Flyer.MIME)
	assert.True(t, strings.HasPrefix(res.Flyer.ImageKey, "users/alice/flyers/"))

	list, err := f.svc.List(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	meta, data, err := f.svc.Image(ctx, "alice", res.Flyer.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Flyer.ID, meta.ID)
	assert.Equal(t, res.Flyer.Bytes, int64(len(data)))

	_, _, err = f.svc.Image(ctx, "bob", res.Flyer.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateRejectsInvalidProject(t *testing.T) {
	f := newFixture(t, 3, NewPlaceholderGenerator())
	p := domain.NewProject(domain.CategoryEvent, domain.DefaultCatalog())
	p.SetText(domain.FieldHeadline, "   ")

	_, err := f.svc.Generate(context.Background(), "alice", p)
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
	assert.Equal(t, 3, credit(t, f.ledgers, "alice"))
}

func TestGenerateInsufficientCredits(t *testing.T) {
	var outcomes []string
	f := newFixture(t, 0, NewPlaceholderGenerator())
	f.svc.onGenerate = func(o string) { outcomes = append(outcomes, o) }

	_, err := f.svc.Generate(context.Background(), "alice", validProject())
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.Equal(t, []string{OutcomeNoCredit}, outcomes)
}

func TestGenerateRefundsOnFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
	}{
		{name: "provider error", gen: failingGenerator{err: errors.New("upstream 500")}},
		{name: "timeout", gen: slowGenerator{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 2, tc.gen)
			_, err := f.svc.Generate(context.Background(), "alice", validProject())
			assert.ErrorIs(t, err, domain.ErrProviderFailure)
			assert.Equal(t, 2, credit(t, f.ledgers, "alice"))

			list, err := f.svc.List(context.Background(), "alice", 10)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestDeleteAndExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5, NewPlaceholderGenerator())

	first, err := f.svc.Generate(ctx, "alice", validProject())
	require.NoError(t, err)
	second, err := f.svc.Generate(ctx, "alice", validProject())
	require.NoError(t, err)

	archive, n, err := f.svc.Export(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)
	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.ElementsMatch(t, []string{"summer-clearance.png", "1-summer-clearance.png"}, names)

	require.NoError(t, f.svc.Delete(ctx, "alice", first.Flyer.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, "alice", first.Flyer.ID), domain.ErrNotFound)
	exists, err := f.files.Exists(ctx, first.Flyer.ImageKey)
	require.NoError(t, err)
	assert.False(t, exists)

	list, err := f.svc.List(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.Flyer.ID, list[0].ID)
}

func TestBuildFlyerPrompt(t *testing.T) {
	p := validProject()
	p.Visuals.AvoidElements = []string{"clip art", " "}
	p.QR = &domain.QRSettings{Enabled: true, Placement: domain.CornerTopLeft}
	p.TargetAudience = "students"

	got := BuildFlyerPrompt(p)
	for _, want := range []string{
		"sale promo flyer",
		`headline: "Summer Clearance"`,
		`discountText: "50% OFF"`,
		"Avoid: clip art.",
		"top left corner for a QR code",
		"Target audience: students.",
		"Aspect ratio 4:5.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("BuildFlyerPrompt() missing %q in:\n%s", want, got)
		}
	}

	p.Visuals.ImageryType = domain.ImageryTextFree
	if strings.Contains(BuildFlyerPrompt(p), "Summer Clearance") {
		t.Fatal("text-free prompt must not include flyer text")
	}
}

func TestImageSize(t *testing.T) {
	tests := map[string]string{"1:1": "1024x1024", "16:9": "1536x1024", "9:16": "1024x1536", "letter": "1024x1536"}
	for in, want := range tests {
		if got := ImageSize(in); got != want {
			t.Fatalf("ImageSize(%q) = %q, want %q", in, got, want)
		}
	}
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

type stubSQL struct {
	row  pgx.Row
	tag  pgconn.CommandTag
	args []any
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.args = args
	return s.tag, nil
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.args = args
	return s.row
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected query")
}

func TestPostgresRepositoryNotFound(t *testing.T) {
	sql := &stubSQL{
		row: stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }},
		tag: pgconn.NewCommandTag("DELETE 0"),
	}
	repo := NewPostgresRepository(sql)

	_, err := repo.GetByID(context.Background(), "alice", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []any{"alice", "00000000-0000-0000-0000-000000000000"}, sql.args)

	assert.ErrorIs(t, repo.Delete(context.Background(), "alice", "x"), domain.ErrNotFound)
}

func TestPostgresRepositoryCreateScansTimestamp(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sql := &stubSQL{row: stubRow{scan: func(dest ...any) error {
		*(dest[0].(*time.Time)) = created
		return nil
	}}}
	f := &domain.SavedFlyer{ID: "id-1", UserID: "alice", Category: domain.CategoryEvent, CreditsUsed: 1}
	require.NoError(t, NewPostgresRepository(sql).Create(context.Background(), f))
	assert.Equal(t, created, f.CreatedAt)
	assert.Len(t, sql.args, 11)
	assert.Equal(t, "event", sql.args[3])
}
