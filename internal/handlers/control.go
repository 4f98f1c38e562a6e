package handlers

import (
	"switchbot_dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

// ApplyAcRequest is the full air conditioner state. DeviceID falls back to
// the stored AC device.
type ApplyAcRequest struct {
	DeviceID    string            `json:"device_id,omitempty"`
	Temperature int               `json:"temperature" binding:"required" example:"26"`
	Mode        models.AcMode     `json:"mode" binding:"required" example:"cool"`
	FanSpeed    models.FanSpeed   `json:"fan_speed" binding:"required" example:"auto"`
	Power       models.PowerState `json:"power" binding:"required" example:"on"`
}

// RemoteCommandRequest addresses an infrared TV or light.
type RemoteCommandRequest struct {
	DeviceID string `json:"device_id,omitempty"`
	Command  string `json:"command" binding:"required" example:"turnOn"`
}

// @Summary      Apply AC state
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        input  body      ApplyAcRequest  true  "AC state"
// @Success      200    {object}  models.CommandResult
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      502    {object}  models.CommandResult
// @Router       /api/v1/ac/apply [post]
// @Security     BearerAuth
func (h *Handler) applyAirConditioner(c *gin.Context) {
	var req ApplyAcRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	st := models.AcState{
		Temperature: req.Temperature,
		Mode:        req.Mode,
		FanSpeed:    req.FanSpeed,
		Power:       req.Power,
	}
	res, err := h.services.Control.ApplyAirConditioner(c.Request.Context(), req.DeviceID, st)
	if err != nil {
		h.writeServiceError(c, "ac_apply_rejected", err)
		return
	}
	h.writeResult(c, res.Success, "ac_apply_failed", res.Message, res)
}

// @Summary      Send TV command
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        input  body      RemoteCommandRequest  true  "turnOn, turnOff, channelAdd, channelSub, volumeAdd or volumeSub"
// @Success      200    {object}  models.CommandResult
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      502    {object}  models.CommandResult
// @Router       /api/v1/tv/command [post]
// @Security     BearerAuth
func (h *Handler) sendTVCommand(c *gin.Context) {
	var req RemoteCommandRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	res, err := h.services.Control.SendTV(c.Request.Context(), req.DeviceID, req.Command)
	if err != nil {
		h.writeServiceError(c, "tv_command_rejected", err)
		return
	}
	h.writeResult(c, res.Success, "tv_command_failed", res.Message, res)
}

// @Summary      Send light command
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        input  body      RemoteCommandRequest  true  "turnOn or turnOff"
// @Success      200    {object}  models.CommandResult
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Failure      502    {object}  models.CommandResult
// @Router       /api/v1/light/command [post]
// @Security     BearerAuth
func (h *Handler) sendLightCommand(c *gin.Context) {
	var req RemoteCommandRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	res, err := h.services.Control.SendLight(c.Request.Context(), req.DeviceID, req.Command)
	if err != nil {
		h.writeServiceError(c, "light_command_rejected", err)
		return
	}
	h.writeResult(c, res.Success, "light_command_failed", res.Message, res)
}
