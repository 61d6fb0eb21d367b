package httpapi

import (
	"net/http"

	"flygen/internal/http/handlers"
	"flygen/internal/infra"
	"flygen/internal/metrics"
	appmw "flygen/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the router around an App.
type Options struct {
	JWTSecret      string
	JWTIssuer      string
	DefaultLocale  string
	AllowedOrigins []string
	CountryLookup  appmw.CountryLookup
	Limiter        *appmw.RateLimiter
	Metrics        *metrics.Metrics
	Logger         infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmw.Logger(opts.Logger),
		appmw.CORS(opts.AllowedOrigins),
		appmw.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Instrument)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/catalog", app.ShowCatalog)
	r.Get("/v1/products", app.Products)
	r.Post("/v1/auth/google", app.SignInWithGoogle)

	r.Group(func(r chi.Router) {
		r.Use(appmw.AuthJWT(opts.JWTSecret, opts.JWTIssuer))
		if opts.Limiter != nil {
			r.Use(opts.Limiter.Middleware)
		}

		r.Route("/v1/wizard/sessions", func(r chi.Router) {
			r.Post("/", app.CreateSession)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", app.SessionState)
				r.Delete("/", app.DeleteSession)
				r.Post("/intent", app.SelectIntent)
				r.Post("/intent/back", app.BackToIntent)
				r.Post("/category", app.SelectCategory)
				r.Post("/next", app.NextStep)
				r.Post("/previous", app.PreviousStep)
				r.Post("/goto", app.GoToStep)
				r.Patch("/project", app.UpdateProject)
				r.Post("/load", app.LoadProject)
				r.Post("/cancel", app.RequestCancel)
				r.Post("/cancel/keep", app.KeepEditing)
				r.Post("/cancel/confirm", app.ConfirmCancel)
				r.Post("/generate", app.Generate)
			})
		})

		r.Route("/v1/drafts", func(r chi.Router) {
			r.Get("/", app.Draft)
			r.Delete("/", app.DeleteDraft)
		})

		r.Route("/v1/credits", func(r chi.Router) {
			r.Get("/", app.CreditsBalance)
			r.Post("/sync", app.CreditsSync)
			r.Get("/preferences", app.Preferences)
			r.Put("/preferences", app.UpdatePreferences)
		})

		r.Post("/v1/purchases/redeem", app.RedeemPurchase)

		r.Route("/v1/suggestions", func(r chi.Router) {
			r.Post("/elements", app.SuggestElements)
			r.Post("/extras", app.SuggestSmartExtras)
		})

		r.Route("/v1/flyers", func(r chi.Router) {
			r.Get("/", app.ListFlyers)
			r.Get("/export", app.ExportFlyers)
			r.Get("/{flyer_id}/image", app.FlyerImage)
			r.Delete("/{flyer_id}", app.DeleteFlyer)
		})
	})

	return r
}
