package handlers

import (
	"fmt"
	"net/http"
	"time"

	"flygen/internal/credits"
	"flygen/internal/domain"
)

type creditsResponse struct {
	credits.Balance
	SubscriptionProduct string    `json:"subscription_product,omitempty"`
	SubscriptionExpires time.Time `json:"subscription_expires,omitempty"`
}

func (a *App) CreditsBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	ledger := a.Ledgers.For(userID)
	p, err := ledger.Profile(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, creditsResponse{
		Balance:             credits.Balance{Credits: p.Credits, UnsyncedDelta: p.UnsyncedDelta, LastSyncedAt: p.LastSyncedAt},
		SubscriptionProduct: p.SubscriptionProduct,
		SubscriptionExpires: p.SubscriptionExpires,
	})
}

type syncResponse struct {
	Balance             credits.Balance `json:"balance"`
	PreferredCategories []string        `json:"preferred_categories"`
}

// CreditsSync reconciles the balance and preferences with the remote
// records. Clients call it when the app comes to the foreground.
func (a *App) CreditsSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	ledger := a.Ledgers.For(userID)
	bal, err := ledger.Sync(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	prefs, err := ledger.SyncPreferences(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, syncResponse{Balance: bal, PreferredCategories: nonNil(prefs)})
}

type preferencesBody struct {
	PreferredCategories []string `json:"preferred_categories"`
}

func (a *App) Preferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	p, err := a.Ledgers.For(userID).Profile(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, preferencesBody{PreferredCategories: nonNil(p.PreferredCategories)})
}

func (a *App) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var body preferencesBody
	if err := a.decode(r, &body); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	seen := make(map[string]struct{}, len(body.PreferredCategories))
	cats := make([]string, 0, len(body.PreferredCategories))
	for _, c := range body.PreferredCategories {
		if !a.Catalog.Has(domain.Category(c)) {
			a.fail(w, r, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c))
			return
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	if err := a.Ledgers.For(userID).SetPreferences(r.Context(), cats); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, preferencesBody{PreferredCategories: cats})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
