package handlers

import (
	"net/http"

	"switchbot_dashboard/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	tokenMask        = "****"
	tokenHintSuffix  = 4
	tokenHintMinSize = 8
)

// settingsView is the settings payload with both credentials masked. The
// token is the vendor Authorization header, so only a short suffix is shown.
type settingsView struct {
	TokenSet      bool   `json:"tokenSet"`
	TokenHint     string `json:"tokenHint,omitempty"`
	SecretSet     bool   `json:"secretSet"`
	UseProxy      bool   `json:"useProxy"`
	DeviceID      string `json:"deviceId"`
	TVDeviceID    string `json:"tvDeviceId"`
	LightDeviceID string `json:"lightDeviceId"`
	MeterDeviceID string `json:"meterDeviceId"`
	Configured    bool   `json:"configured"`
}

func newSettingsView(s models.Settings) settingsView {
	return settingsView{
		TokenSet:      s.Token != "",
		TokenHint:     maskToken(s.Token),
		SecretSet:     s.Secret != "",
		UseProxy:      s.UseProxy,
		DeviceID:      s.DeviceID,
		TVDeviceID:    s.TVDeviceID,
		LightDeviceID: s.LightDeviceID,
		MeterDeviceID: s.MeterDeviceID,
		Configured:    s.Configured(),
	}
}

// maskToken keeps the last characters of long tokens so the operator can tell
// which one is active.
func maskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= tokenHintMinSize:
		return tokenMask
	default:
		return tokenMask + token[len(token)-tokenHintSuffix:]
	}
}

// SaveSettingsRequest is the settings payload accepted by PUT /api/v1/settings.
type SaveSettingsRequest struct {
	Token         string `json:"token" binding:"required" example:"0123abcd"`
	Secret        string `json:"secret" binding:"required" example:"s3cr3t"`
	UseProxy      bool   `json:"useProxy"`
	DeviceID      string `json:"deviceId,omitempty" example:"02-202301011234-12345678"`
	TVDeviceID    string `json:"tvDeviceId,omitempty"`
	LightDeviceID string `json:"lightDeviceId,omitempty"`
	MeterDeviceID string `json:"meterDeviceId,omitempty"`
}

// @Summary      Get settings
// @Description  Active credentials and selected devices. Neither credential is returned in full.
// @Tags         settings
// @Produce      json
// @Success      200  {object}  settingsView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/settings [get]
// @Security     BearerAuth
func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, newSettingsView(h.services.Settings.Get()))
}

// @Summary      Save settings
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        input  body      SaveSettingsRequest  true  "credentials and device selection"
// @Success      200    {object}  settingsView
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/settings [put]
// @Security     BearerAuth
func (h *Handler) saveSettings(c *gin.Context) {
	var req SaveSettingsRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	st := models.Settings(req)
	if err := h.services.Settings.Save(c.Request.Context(), st); err != nil {
		h.writeServiceError(c, "settings_save_failed", err)
		return
	}

	if h.log != nil {
		h.log.Infow("settings_saved", "use_proxy", st.UseProxy)
	}
	c.JSON(http.StatusOK, newSettingsView(h.services.Settings.Get()))
}
