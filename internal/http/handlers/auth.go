package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"flygen/internal/infra/google"
	"flygen/internal/middleware"
)

// IDTokenVerifier checks third-party sign-in tokens.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*google.Claims, error)
}

// TokenIssuer signs API access tokens for signed-in users.
type TokenIssuer struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type signInRequest struct {
	IDToken string `json:"id_token"`
}

type signInResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Credits   int       `json:"credits"`
}

// SignInWithGoogle exchanges a Google ID token for an API access token.
func (a *App) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	if a.IDTokens == nil {
		a.error(w, http.StatusNotFound, "not_found", "google sign-in is not configured")
		return
	}
	var req signInRequest
	if err := a.decode(r, &req); err != nil || strings.TrimSpace(req.IDToken) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token is required")
		return
	}
	claims, err := a.IDTokens.VerifyIDToken(r.Context(), req.IDToken)
	if err != nil {
		a.Logger.Debug().Err(err).Msg("id token rejected")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid id token")
		return
	}

	userID := "google:" + claims.Subject
	locale := middleware.LocaleFromContext(r.Context())
	ttl := a.Tokens.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	token, err := middleware.SignJWT(a.Tokens.Secret, a.Tokens.Issuer, userID, locale, ttl)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	bal, err := a.Ledgers.For(userID).Balance(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, signInResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(ttl).UTC(),
		UserID:    userID,
		Credits:   bal.Credits,
	})
}
