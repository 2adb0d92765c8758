package handlers_test

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthAndMetrics(t *testing.T) {
	env := newEnv(t)

	w := env.do(http.MethodGet, "/health", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[map[string]string](t, w); got["status"] != "ok" || got["timestamp"] != "2026-03-01T18:00:00Z" {
		t.Errorf("health = %v", got)
	}

	// Generate at least one labelled request before scraping.
	env.do(http.MethodGet, "/api/events", nil, nil)

	w = env.do(http.MethodGet, "/metrics", nil, nil)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "speeddate_http_requests_total") {
		t.Error("request counter missing from /metrics")
	}
}
