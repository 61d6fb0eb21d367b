package handlers

import (
	"context"
	"errors"
	"net/http"

	"flygen/internal/domain"
	"flygen/internal/middleware"
	"flygen/internal/suggest"
	"flygen/internal/wizard"
)

type suggestionRequest struct {
	SessionID string `json:"session_id"`
}

// projectSnapshot copies the working project out of a session.
func (a *App) projectSnapshot(userID, sessionID string) (*domain.Project, error) {
	var p *domain.Project
	err := a.Sessions.With(sessionID, userID, func(wz *wizard.Wizard) error {
		if !wz.HasProject() {
			return wizard.ErrNoProject
		}
		p = wz.Project().Clone()
		return nil
	})
	return p, err
}

func (a *App) suggestionFailed(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusBadGateway, "provider_failure"
	if errors.Is(err, suggest.ErrNoSuggestions) {
		status, code = http.StatusUnprocessableEntity, "no_suggestions"
	} else if !errors.Is(err, domain.ErrProviderFailure) {
		a.fail(w, r, err)
		return
	}
	a.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("suggestions unavailable")
	a.json(w, status, errorResponse{Error: errorPayload{Code: code, Message: suggest.UserMessage(err), Retryable: true}})
}

func (a *App) SuggestElements(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req suggestionRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	project, err := a.projectSnapshot(userID, req.SessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Suggester.Elements(r.Context(), suggest.Request{Project: project, Locale: middleware.LocaleFromContext(r.Context())})
	if err != nil {
		a.suggestionFailed(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

// SuggestSmartExtras debits SmartExtrasCost credits up front and refunds
// them when no suggestions come back.
func (a *App) SuggestSmartExtras(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req suggestionRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	project, err := a.projectSnapshot(userID, req.SessionID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ledger := a.Ledgers.For(userID)
	if a.SmartExtrasCost > 0 {
		if _, err := ledger.Deduct(r.Context(), a.SmartExtrasCost); err != nil {
			a.fail(w, r, err)
			return
		}
	}
	res, err := a.Suggester.SmartExtras(r.Context(), suggest.Request{Project: project, Locale: middleware.LocaleFromContext(r.Context())})
	if err != nil {
		if a.SmartExtrasCost > 0 {
			if _, rerr := ledger.Grant(context.WithoutCancel(r.Context()), a.SmartExtrasCost); rerr != nil {
				a.Logger.Error().Err(rerr).Str("user_id", userID).Msg("smart extras refund failed")
			}
		}
		a.suggestionFailed(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
