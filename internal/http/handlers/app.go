package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"flygen/internal/credits"
	"flygen/internal/domain"
	"flygen/internal/drafts"
	"flygen/internal/flyers"
	"flygen/internal/infra"
	"flygen/internal/middleware"
	"flygen/internal/purchases"
	"flygen/internal/suggest"
	"flygen/internal/wizard"
)

const maxBodyBytes = 12 << 20

// App carries the services the HTTP handlers drive.
type App struct {
	Catalog         domain.Catalog
	Sessions        *wizard.Sessions
	Drafts          *drafts.Store
	Ledgers         *credits.Registry
	Suggester       suggest.Suggester
	SmartExtrasCost int
	Flyers          *flyers.Service
	Purchases       *purchases.Service
	IDTokens        IDTokenVerifier
	Tokens          TokenIssuer
	Logger          infra.Logger
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorResponse{Error: errorPayload{Code: code, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (a *App) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// fail maps a service error onto the error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, drafts.ErrNoDraft):
		status, code = http.StatusNotFound, "no_draft"
	case errors.Is(err, wizard.ErrTooManySessions):
		status, code = http.StatusTooManyRequests, "too_many_sessions"
	case errors.Is(err, wizard.ErrNoProject),
		errors.Is(err, wizard.ErrNotAtCategoryStep),
		errors.Is(err, wizard.ErrNoPendingCancel),
		errors.Is(err, wizard.ErrCategoryImmutable):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, wizard.ErrInvalidStep),
		errors.Is(err, wizard.ErrUnknownIntent),
		errors.Is(err, wizard.ErrInvalidDecision),
		errors.Is(err, wizard.ErrUnknownLoadSource),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, credits.ErrInvalidAmount):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrInvalidProject):
		status, code = http.StatusUnprocessableEntity, "invalid_project"
	case errors.Is(err, domain.ErrInsufficientCredits):
		status, code = http.StatusPaymentRequired, "insufficient_credits"
	case errors.Is(err, purchases.ErrPurchaseCancelled):
		status, code = http.StatusConflict, "purchase_cancelled"
	case errors.Is(err, purchases.ErrPurchasePending):
		status, code = http.StatusAccepted, "purchase_pending"
	case errors.Is(err, purchases.ErrVerificationFailed):
		status, code = http.StatusUnprocessableEntity, "verification_failed"
	case errors.Is(err, purchases.ErrUnknownProduct):
		status, code = http.StatusUnprocessableEntity, "unknown_product"
	case errors.Is(err, purchases.ErrAlreadyRedeemed):
		status, code = http.StatusConflict, "already_redeemed"
	case errors.Is(err, domain.ErrProviderFailure):
		status, code = http.StatusBadGateway, "provider_failure"
	}
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	a.error(w, status, code, message)
}

func (a *App) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return "", false
	}
	return userID, true
}
