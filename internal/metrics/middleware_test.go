package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newInstrumentedRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/books/match", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"books":[]}`))
	})
	r.Get("/market", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	r.Post("/market/add", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func TestMiddleware_RecordsCountAndDuration(t *testing.T) {
	r := newInstrumentedRouter()

	req := httptest.NewRequest("GET", "/books/match", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/books/match", "200"))
	if count < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", count)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMiddleware_LabelsStatusAndMethod(t *testing.T) {
	r := newInstrumentedRouter()

	tests := []struct {
		method string
		path   string
		status string
	}{
		{"GET", "/market", "200"},
		{"POST", "/market/add", "201"},
		{"GET", "/missing", "404"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status))
			if val < 1 {
				t.Errorf("expected requests_total for %s %s status %s >= 1, got %f", tc.method, tc.path, tc.status, val)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/books/match", "/books/match"},
		{"/healthz", "/healthz"},
	}

	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
