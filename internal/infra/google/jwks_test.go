package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type issuer struct {
	server  *httptest.Server
	key     *rsa.PrivateKey
	kid     string
	fetches atomic.Int32
}

func newIssuer(t *testing.T) *issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	iss := &issuer{key: key, kid: "key-1"}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"jwks_uri": iss.server.URL + "/certs"})
	})
	mux.HandleFunc("/certs", func(w http.ResponseWriter, r *http.Request) {
		iss.fetches.Add(1)
		pub := iss.key.PublicKey
		_ = json.NewEncoder(w).Encode(jwks{Keys: []jwk{{
			Kid: iss.kid,
			Kty: "RSA",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}}})
	})
	iss.server = httptest.NewServer(mux)
	t.Cleanup(iss.server.Close)
	return iss
}

func (i *issuer) sign(t *testing.T, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = i.kid
	s, err := tok.SignedString(i.key)
	require.NoError(t, err)
	return s
}

func claimsFor(iss, aud string, exp time.Time) Claims {
	return Claims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss,
			Subject:   "1234567890",
			Audience:  jwt.ClaimStrings{aud},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestVerifyIDToken(t *testing.T) {
	iss := newIssuer(t)
	v := NewVerifier(iss.server.URL, "client-1", iss.server.Client())
	token := iss.sign(t, claimsFor(iss.server.URL, "client-1", time.Now().Add(time.Hour)))

	claims, err := v.VerifyIDToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)

	_, err = v.VerifyIDToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int32(1), iss.fetches.Load())
}

func TestVerifyIDTokenRejects(t *testing.T) {
	iss := newIssuer(t)
	v := NewVerifier(iss.server.URL, "client-1", iss.server.Client())

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong audience", token: iss.sign(t, claimsFor(iss.server.URL, "someone-else", time.Now().Add(time.Hour)))},
		{name: "expired", token: iss.sign(t, claimsFor(iss.server.URL, "client-1", time.Now().Add(-time.Hour)))},
		{name: "wrong issuer", token: iss.sign(t, claimsFor("https://evil.example", "client-1", time.Now().Add(time.Hour)))},
		{name: "garbage", token: "x.y.z"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.VerifyIDToken(context.Background(), tc.token)
			assert.Error(t, err)
		})
	}
}

func TestVerifyIDTokenRefreshesOnUnknownKid(t *testing.T) {
	iss := newIssuer(t)
	v := NewVerifier(iss.server.URL, "client-1", iss.server.Client())
	first := iss.sign(t, claimsFor(iss.server.URL, "client-1", time.Now().Add(time.Hour)))
	_, err := v.VerifyIDToken(context.Background(), first)
	require.NoError(t, err)

	rotated, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	iss.key, iss.kid = rotated, "key-2"
	second := iss.sign(t, claimsFor(iss.server.URL, "client-1", time.Now().Add(time.Hour)))

	_, err = v.VerifyIDToken(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, int32(2), iss.fetches.Load())
}
