package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/diewo77/partner-admin/internal/metrics"
)

func TestMetricsLabelsUseRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Metrics(mux)

	for _, id := range []string{"1", "2", "42"} {
		r := httptest.NewRequest(http.MethodGet, "/widgets/"+id, nil)
		h.ServeHTTP(httptest.NewRecorder(), r)
	}

	// one series for the pattern, not one per id
	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "GET /widgets/{id}", "200"))
	if got != 3 {
		t.Fatalf("expected 3 requests under the route pattern, got %v", got)
	}
}

func TestMetricsUnmatchedRoute(t *testing.T) {
	mux := http.NewServeMux()
	h := Metrics(mux)

	r := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	h.ServeHTTP(httptest.NewRecorder(), r)

	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	if got != 1 {
		t.Fatalf("expected unmatched requests under a single label, got %v", got)
	}
}
