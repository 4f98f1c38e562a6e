package handlers

import (
	"github.com/gin-gonic/gin"
)

// @Summary      Meter status
// @Tags         control
// @Produce      json
// @Param        device_id  query     string  false  "meter id; defaults to the stored meter"
// @Success      200        {object}  models.MeterStatusResult
// @Failure      409        {object}  map[string]string
// @Failure      502        {object}  models.MeterStatusResult
// @Router       /api/v1/meter/status [get]
// @Security     BearerAuth
func (h *Handler) meterStatus(c *gin.Context) {
	res, err := h.services.Meter.Status(c.Request.Context(), c.Query("device_id"))
	if err != nil {
		h.writeServiceError(c, "meter_status_rejected", err)
		return
	}
	h.writeResult(c, res.Success, "meter_status_failed", res.Message, res)
}
