package handlers

import (
	"net/http"

	"flygen/internal/purchases"
)

func (a *App) Products(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Purchases.Catalog().Products()})
}

func (a *App) RedeemPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req purchases.RedeemRequest
	if err := a.decode(r, &req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Purchases.Redeem(r.Context(), userID, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
