package handler_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"squarefit/internal/config"
	"squarefit/internal/handler"
	"squarefit/internal/journal"
)

func testConfig() *config.Config {
	return &config.Config{
		Target:     2000,
		Background: "#ffffff",
		Workers:    1,
		MaxBytes:   10 << 20,
	}
}

func newRouter(t *testing.T, h *handler.Handler) http.Handler {
	t.Helper()
	t.Cleanup(h.Close)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return body.Status
}

func TestHealthCheck_OK(t *testing.T) {
	j, err := journal.Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	h := handler.New(j, testConfig())
	defer h.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if status := decodeHealth(t, w); status != "healthy" {
		t.Fatalf("expected healthy status, got %s", status)
	}
}

func TestHealthCheck_NoJournal(t *testing.T) {
	h := handler.New(nil, testConfig())
	defer h.Close()

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without journal, got %d", w.Code)
	}
}

func TestHealthCheck_DBDown(t *testing.T) {
	j, err := journal.Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	h := handler.New(j, testConfig())
	defer h.Close()

	// Close journal to simulate outage
	j.Close()

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if status := decodeHealth(t, w); status != "unhealthy" {
		t.Fatalf("expected unhealthy status, got %s", status)
	}
}

func TestGracefulShutdown(t *testing.T) {
	h := handler.New(nil, testConfig())
	router := newRouter(t, h)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: router}
	go func() {
		_ = srv.Serve(ln)
	}()

	res, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}
