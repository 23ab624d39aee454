package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// /metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPLatency(500 * time.Millisecond)
	c.RecordAuthEvent("signup")
	c.RecordKmLog()
	c.RecordWalletProvision("apple_pay")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	for _, metric := range []string{
		"fuelgo_http_requests_total",
		"fuelgo_http_request_duration_seconds",
		`fuelgo_auth_events_total{event="signup"} 1`,
		"fuelgo_km_logs_total 1",
		`fuelgo_wallet_provision_requests_total{platform="apple_pay"} 1`,
	} {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// Collectorを登録していないレジストリでもハンドラーは200を返すこと
func TestHandler_EmptyRegistry(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(prometheus.NewRegistry()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
