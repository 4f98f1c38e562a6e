package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"switchbot_dashboard/internal/metrics"
	"switchbot_dashboard/internal/models"
)

func scrape(t *testing.T, registry *prometheus.Registry) string {
	t.Helper()
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	return w.Body.String()
}

func TestCollector_Exposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	registry.MustRegister(collector)

	collector.ObserveRequest("devices", "success", 250*time.Millisecond)
	collector.ObserveRequest("status", "network_error", time.Second)
	collector.RecordMeterReading("M-1", models.MeterReading{Temp: 24.5, Humidity: 58})

	body := scrape(t, registry)

	for _, metric := range []string{
		"switchbot_api_requests_total",
		"switchbot_api_request_duration_seconds",
		"switchbot_meter_temperature_celsius",
		"switchbot_meter_humidity_percent",
		"switchbot_meter_last_read_timestamp",
		"switchbot_last_update_timestamp",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric %s not found in output", metric)
		}
	}

	for _, want := range []string{
		`switchbot_api_requests_total{endpoint="devices",outcome="success"} 1`,
		`switchbot_api_requests_total{endpoint="status",outcome="network_error"} 1`,
		`switchbot_meter_temperature_celsius{device_id="M-1"} 24.5`,
		`switchbot_meter_humidity_percent{device_id="M-1"} 58`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected sample %q not found in output:\n%s", want, body)
		}
	}
}

func TestGinMiddleware_CountsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector()
	registry.MustRegister(collector)

	r := gin.New()
	r.Use(metrics.GinMiddleware(collector))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	body := scrape(t, registry)
	if !strings.Contains(body, `switchbot_http_requests_total{code="200",method="GET",route="/health"} 2`) {
		t.Errorf("health route not counted:\n%s", body)
	}
	if !strings.Contains(body, `switchbot_http_requests_total{code="404",method="GET",route="unmatched"} 1`) {
		t.Errorf("unmatched route not counted:\n%s", body)
	}
}
