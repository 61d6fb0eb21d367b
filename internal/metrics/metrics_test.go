package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentLabelsByRoutePattern(t *testing.T) {
	m := New(func() int { return 3 })
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/v1/flyers/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/flyers/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/v1/flyers/{id}", "404"))
	assert.Equal(t, 2.0, got)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions))
}

func TestOutcomeCounters(t *testing.T) {
	m := New(nil)
	m.ObserveSync("remote_wins")
	m.ObserveSync("remote_wins")
	m.ObserveGeneration("success")
	m.ObserveRedemption("already_redeemed")
	m.ObserveSuggestionFailure("http_500", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.syncs.WithLabelValues("remote_wins")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redemptions.WithLabelValues("already_redeemed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suggestions.WithLabelValues("http_500")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "flygen_credits_syncs_total")
}
