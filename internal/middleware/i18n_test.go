package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchLocale(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"fr-CA":                "fr",
		"pt-BR,en;q=0.5":       "pt",
		"ja-JP, de-AT;q=0.9":   "de",
		"es-419":               "es",
		"zz":                   "",
		"not a header;;q=abc,": "",
	}
	for header, want := range cases {
		assert.Equal(t, want, matchLocale(header), "header %q", header)
	}
}

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		fallback string
		country  string
		want     string
	}{
		{name: "x-locale wins over country", headers: map[string]string{"X-Locale": "ID"}, country: "US", want: "id"},
		{name: "accept-language", headers: map[string]string{"Accept-Language": "en-US,en;q=0.9"}, want: "en"},
		{name: "regional spanish", headers: map[string]string{"Accept-Language": "es-MX,en;q=0.5"}, want: "es"},
		{name: "unsupported language uses country", headers: map[string]string{"Accept-Language": "ja-JP"}, country: "BR", want: "pt"},
		{name: "mapped country", country: "AT", want: "de"},
		{name: "unmapped country", country: "US", fallback: "fr", want: "en"},
		{name: "configured fallback", fallback: "fr", want: "fr"},
		{name: "unsupported fallback", fallback: "ja", want: "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, detectLocale(req, tc.fallback, tc.country))
		})
	}
}

func TestResolveCountry(t *testing.T) {
	lookupErr := errors.New("lookup failed")
	tests := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{name: "edge header first", headers: map[string]string{"X-Country-Code": "us", "CF-IPCountry": "id"}, want: "US"},
		{name: "locale region", headers: map[string]string{"X-Locale": "en-AU"}, want: "AU"},
		{name: "accept-language region", headers: map[string]string{"Accept-Language": "fr-BE,fr;q=0.9"}, want: "BE"},
		{name: "bare language", headers: map[string]string{"Accept-Language": "id;q=0.8"}, want: ""},
		{
			name: "ip lookup",
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					return "", lookupErr
				}
				return "mx", nil
			},
			want: "MX",
		},
		{name: "lookup error", lookup: func(string) (string, error) { return "", lookupErr }, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ResolveCountry(req, tc.lookup))
		})
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	assert.Equal(t, "10.0.0.1", ClientIP(req))
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", ClientIP(req))
}

func TestI18NStoresLocaleAndCountry(t *testing.T) {
	assert.Equal(t, "en", LocaleFromContext(context.Background()))

	var locale, country string
	h := I18N("en", func(string) (string, error) { return "de", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "de", locale)
	assert.Equal(t, "DE", country)
	assert.Equal(t, "de", rec.Header().Get("Content-Language"))
}
