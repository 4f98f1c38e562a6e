package handlers

import (
	"errors"
	"net/http"

	"switchbot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
	errInternal        = "internal error"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// writeServiceError maps configuration failures to 409 and validation
// failures to 400. Anything else is unexpected.
func (h *Handler) writeServiceError(c *gin.Context, logKey string, err error) {
	switch {
	case errors.Is(err, service.ErrNotConfigured), errors.Is(err, service.ErrDeviceNotConfigured):
		if h.log != nil {
			h.log.Infow(logKey, "err", err)
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidAcState),
		errors.Is(err, service.ErrUnsupportedCommand),
		errors.Is(err, service.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err)
	}
}

// writeResult sends a vendor result: 200 on success, 502 otherwise.
func (h *Handler) writeResult(c *gin.Context, success bool, logKey, message string, result any) {
	if success {
		c.JSON(http.StatusOK, result)
		return
	}
	if h.log != nil {
		h.log.Warnw(logKey, "message", message)
	}
	c.JSON(http.StatusBadGateway, result)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	body := gin.H{"status": statusOK}
	if h.broker != nil {
		body["mqtt"] = brokerState(h.broker.IsConnected())
	}
	c.JSON(http.StatusOK, body)
}

func brokerState(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}
