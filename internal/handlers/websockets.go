package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"switchbot_dashboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits. The vendor
// enforces a daily request quota, so the stream interval is coarse.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 30 * time.Second
	maxInterval      = 10 * time.Minute
	maxIntervalMilli = 600_000
)

// minInterval is the shortest stream interval a client may ask for.
var minInterval = 5 * time.Second

// WebSocket message types.
const (
	wsTypeMeter = "meter"
	wsTypeError = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// meterFrame is the data of a "meter" envelope.
type meterFrame struct {
	DeviceID string              `json:"device_id,omitempty"`
	Reading  models.MeterReading `json:"reading"`
	ReadAt   time.Time           `json:"read_at"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// errStreamStopped ends a stream whose meter cannot be read at all.
var errStreamStopped = errors.New("meter stream stopped")

// @Summary      Meter stream
// @Description  WebSocket upgrade. Sends {"type":"meter"} envelopes every interval (default 30s, 5s..10m).
// @Tags         control
// @Param        device_id    query  string  false  "meter id; defaults to the stored meter"
// @Param        interval     query  string  false  "Go duration, e.g. 1m"
// @Param        interval_ms  query  int     false  "interval in milliseconds"
// @Router       /ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	deviceID := c.Query("device_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendReading(c.Request.Context(), conn, deviceID); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendReading(c.Request.Context(), conn, deviceID); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=1m or ?interval_ms=60000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v <= maxIntervalMilli {
			if d := time.Duration(v) * time.Millisecond; d >= minInterval {
				return d
			}
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendReading reads the meter and writes one envelope. Vendor failures are
// sent as error envelopes and keep the stream open; configuration failures
// end it.
func (h *Handler) sendReading(ctx context.Context, conn *websocket.Conn, deviceID string) error {
	res, err := h.services.Meter.Sample(ctx, deviceID)
	if err != nil {
		_ = writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: err.Error()})
		return errors.Join(errStreamStopped, err)
	}
	if !res.Success || res.Data == nil {
		return writeEnvelope(conn, wsEnvelope{Type: wsTypeError, Error: res.Message})
	}
	return writeEnvelope(conn, wsEnvelope{Type: wsTypeMeter, Data: meterFrame{
		DeviceID: deviceID,
		Reading:  *res.Data,
		ReadAt:   time.Now().UTC(),
	}})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
