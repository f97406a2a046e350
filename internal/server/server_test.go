package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/api"
	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/handler"
	"github.com/ziadkadry99/linebot-module/internal/line"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
	"github.com/ziadkadry99/linebot-module/internal/router"
)

type stubGateway struct{}

func (stubGateway) SendText(context.Context, string, string, ...line.SendOption) domain.SendMessageResponse {
	return domain.Succeeded("")
}

func (stubGateway) FetchProfile(context.Context, string) (*domain.User, bool) { return nil, false }

func (stubGateway) FetchContent(context.Context, string) ([]byte, bool) { return nil, false }

type stubReplier struct{}

func (stubReplier) Reply(context.Context, string, string) domain.SendMessageResponse {
	return domain.Succeeded("")
}

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := zap.NewNop()
	a := api.New(api.Options{
		ChannelSecret: "secret",
		Version:       "1.0.0",
		Gateway:       stubGateway{},
		Router:        router.New(stubReplier{}, logger, m),
		Handler:       handler.Echo{},
		Logger:        logger,
		Metrics:       m,
	})
	return New(Config{Addr: ":0", Version: "1.0.0"}, a, logger, reg), reg
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["status"] != "healthy" {
			t.Errorf("%s: expected status 'healthy', got %q", path, body["status"])
		}
		if body["service"] != "linebot-communication-module" {
			t.Errorf("%s: unexpected service %q", path, body["service"])
		}
	}
}

func TestRoot(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] == "" || body["docs"] != "/docs" || body["version"] != "1.0.0" {
		t.Errorf("unexpected root body: %v", body)
	}
}

func TestDocsListsRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/docs", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), "POST /api/v1/webhook") {
		t.Errorf("docs missing webhook route: %s", w.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Produce one webhook sample.
	req := httptest.NewRequest("POST", "/api/v1/webhook", strings.NewReader(`{}`))
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `linebot_webhook_requests_total{outcome="invalid_signature"} 1`) {
		t.Errorf("metrics output missing webhook counter:\n%s", w.Body.String())
	}
}

func TestRecovererReturnsJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Router().Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	req := httptest.NewRequest("GET", "/boom", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "goroutine") {
		t.Error("stack trace leaked to caller")
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["detail"] != "Internal server error" {
		t.Errorf("detail = %q", body["detail"])
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	srv, _ := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
