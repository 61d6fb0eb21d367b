package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"flygen/internal/credits"
	"flygen/internal/domain"
	"flygen/internal/drafts"
	"flygen/internal/flyers"
	"flygen/internal/http/handlers"
	httpapi "flygen/internal/http/httpapi"
	"flygen/internal/infra"
	"flygen/internal/infra/geoip"
	"flygen/internal/infra/google"
	"flygen/internal/metrics"
	"flygen/internal/middleware"
	"flygen/internal/profile"
	"flygen/internal/purchases"
	"flygen/internal/records"
	"flygen/internal/storage"
	"flygen/internal/suggest"
	"flygen/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
		if err := ensureSchema(ctx, cfg, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
	}
	var runner *infra.SQLRunner
	if dbpool != nil {
		runner = infra.NewSQLRunner(dbpool, logger)
	}

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}

	catalog := domain.DefaultCatalog()
	sessions := wizard.NewSessions(catalog, cfg.SessionTTL, cfg.MaxSessionsPerUser)
	m := metrics.New(sessions.Len)

	var sqlExec infra.SQLExecutor
	if runner != nil {
		sqlExec = runner
	}
	backend, err := records.Open(cfg, sqlExec)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open record backend")
	}
	ledgers := credits.NewRegistry(profile.NewFileStore(files, cfg.StarterCredits), backend, logger, func(o credits.Outcome) {
		m.ObserveSync(string(o))
	})

	var flyerRepo domain.FlyerRepository = flyers.NewFileRepository(files)
	var redemptions purchases.RedemptionLog
	if runner != nil {
		flyerRepo = flyers.NewPostgresRepository(runner)
		redemptions = purchases.NewPostgresLog(runner)
	}

	verifier, err := purchases.NewHMACVerifier(cfg.PurchaseSigningKey, cfg.PurchaseBundleID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build purchase verifier")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := &handlers.App{
		Catalog:         catalog,
		Sessions:        sessions,
		Drafts:          drafts.NewStore(files),
		Ledgers:         ledgers,
		Suggester:       newSuggester(cfg, m, logger),
		SmartExtrasCost: cfg.SmartExtrasCost,
		Flyers: flyers.NewService(flyers.Options{
			Catalog:    catalog,
			Repository: flyerRepo,
			Files:      files,
			Generator:  newGenerator(cfg, logger),
			Ledgers:    ledgers,
			Cost:       cfg.GenerationCost,
			Timeout:    cfg.GenerationTimeout,
			Logger:     logger,
			OnGenerate: m.ObserveGeneration,
		}),
		Purchases: purchases.NewService(purchases.DefaultCatalog(), verifier, ledgers, redemptions, logger, m.ObserveRedemption),
		Tokens: handlers.TokenIssuer{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.TokenTTL,
		},
		Logger: logger,
	}
	if cfg.GoogleClientID != "" {
		app.IDTokens = google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID, nil)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, 10*time.Minute)
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:      cfg.JWTSecret,
		JWTIssuer:      cfg.JWTIssuer,
		DefaultLocale:  cfg.DefaultLocale,
		AllowedOrigins: cfg.AllowedOrigins,
		CountryLookup:  resolver.Lookup(),
		Limiter:        limiter,
		Metrics:        m,
		Logger:         logger,
	})

	startJanitor(ctx, time.Minute, sessions, limiter, logger)

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Str("addr", server.Addr()).Str("records", cfg.RecordBackend).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	ledgers.Wait()
	logger.Info().Msg("server stopped")
}

func ensureSchema(ctx context.Context, cfg *infra.Config, logger infra.Logger) error {
	db, err := infra.OpenSQL(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return infra.EnsureSchema(ctx, db, logger)
}

func newSuggester(cfg *infra.Config, m *metrics.Metrics, logger infra.Logger) suggest.Suggester {
	if cfg.OpenAIAPIKey == "" {
		logger.Info().Msg("OPENAI_API_KEY not set, using static suggestions")
		return suggest.NewStaticSuggester()
	}
	s, err := suggest.NewOpenAISuggester(suggest.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		Timeout:      cfg.SuggestionTimeout,
		OnFailure:    m.ObserveSuggestionFailure,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build suggester")
	}
	return s
}

func newGenerator(cfg *infra.Config, logger infra.Logger) flyers.Generator {
	if cfg.OpenAIAPIKey == "" {
		logger.Info().Msg("OPENAI_API_KEY not set, rendering placeholder flyers")
		return flyers.NewPlaceholderGenerator()
	}
	g, err := flyers.NewOpenAIImageGenerator(flyers.OpenAIImageOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIImageModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build image generator")
	}
	return g
}
