package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	appconfig "github.com/wolfman30/guest-assistant/internal/config"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, metrics := setupMetrics(prometheus.NewRegistry())
	if handler == nil || metrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	metrics.ObserveAnswer("wifi", "LEONINA71")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "guest_assistant_answers_total") {
		t.Fatalf("expected answers counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected go runtime collector to be exported")
	}
}

func TestNewServerLeavesWebSocketsUnbounded(t *testing.T) {
	srv := newServer(&appconfig.Config{Port: "8787"}, http.NotFoundHandler())
	if srv.Addr != ":8787" {
		t.Fatalf("unexpected addr %s", srv.Addr)
	}
	if srv.ReadTimeout != 0 || srv.WriteTimeout != 0 {
		t.Fatalf("expected no read/write timeout, got %s/%s", srv.ReadTimeout, srv.WriteTimeout)
	}
	if srv.ReadHeaderTimeout == 0 {
		t.Fatalf("expected a read header timeout")
	}
}
