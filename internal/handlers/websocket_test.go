package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type testEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 30 * time.Second},
		{"interval_string_valid", "/ws?interval=1m", time.Minute},
		{"interval_ms_valid", "/ws?interval_ms=15000", 15 * time.Second},
		{"interval_too_small", "/ws?interval=200ms", 30 * time.Second},
		{"interval_too_large", "/ws?interval=20m", 30 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=900000", 30 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 30 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 30 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2m&interval_ms=15000", 2 * time.Minute},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=25000", 25 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

func dialMeterStream(t *testing.T, s *service.Service, query url.Values) *websocket.Conn {
	t.Helper()

	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func fastStream(t *testing.T) {
	t.Helper()
	prev := minInterval
	minInterval = time.Millisecond
	t.Cleanup(func() { minInterval = prev })
}

func TestWebSocket_MeterStream_InitialAndPeriodic(t *testing.T) {
	fastStream(t)

	reading := models.MeterReading{Temp: 24.5, Humidity: 58}
	meter := &mockMeter{resp: models.MeterStatusResult{Success: true, Message: "Success", Data: &reading}}
	conn := dialMeterStream(t, &service.Service{Meter: meter}, url.Values{
		"device_id":   {"meter-1"},
		"interval_ms": {"20"},
	})

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env testEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "meter" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var frame meterFrame
	if err := json.Unmarshal(env.Data, &frame); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if frame.DeviceID != "meter-1" || frame.Reading != reading {
		t.Fatalf("unexpected frame: %+v", frame)
	}

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	env = testEnvelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "meter" {
		t.Fatalf("expected type=meter, got %+v", env)
	}
}

func TestWebSocket_VendorFailureKeepsStreaming(t *testing.T) {
	fastStream(t)

	meter := &mockMeter{resp: models.MeterStatusResult{Message: "Error 190: invalid signature"}}
	conn := dialMeterStream(t, &service.Service{Meter: meter}, url.Values{"interval_ms": {"20"}})

	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		var env testEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if env.Type != "error" || env.Error != "Error 190: invalid signature" {
			t.Fatalf("unexpected envelope %d: %+v", i, env)
		}
	}
}

func TestWebSocket_NotConfigured_SendsErrorAndCloses(t *testing.T) {
	meter := &mockMeter{err: service.ErrNotConfigured}
	conn := dialMeterStream(t, &service.Service{Meter: meter}, url.Values{})

	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env testEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read error envelope: %v", err)
	}
	if env.Type != "error" || env.Error != service.ErrNotConfigured.Error() {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
