package handlers

import (
	"switchbot_dashboard/internal/switchbot"

	"github.com/gin-gonic/gin"
)

// @Summary      List devices
// @Description  Fetches the account's devices and groups them into ac, tv, light and meter.
// @Tags         devices
// @Produce      json
// @Success      200  {object}  models.DeviceListResult
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "credentials not configured"
// @Failure      502  {object}  models.DeviceListResult
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	res, err := h.services.Devices.Fetch(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, "devices_fetch_rejected", err)
		return
	}
	h.writeResult(c, res.Success, "devices_fetch_failed", res.Message, res)
}

// @Summary      Send device command
// @Description  Raw passthrough to the vendor command endpoint.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id     path      string                    true  "device id"
// @Param        input  body      switchbot.CommandRequest  true  "command"
// @Success      200    {object}  models.CommandResult
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      502    {object}  models.CommandResult
// @Router       /api/v1/devices/{id}/commands [post]
// @Security     BearerAuth
func (h *Handler) sendDeviceCommand(c *gin.Context) {
	var req switchbot.CommandRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	deviceID := c.Param("id")
	res, err := h.services.Control.SendCommand(c.Request.Context(), deviceID, req)
	if err != nil {
		h.writeServiceError(c, "device_command_rejected", err)
		return
	}
	h.writeResult(c, res.Success, "device_command_failed", res.Message, res)
}
