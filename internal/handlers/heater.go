package handlers

import (
	"net/http"

	"heater_bridge/internal/device"
	"heater_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusPowerSet = "power_set"
	statusTempSet  = "temperature_set"

	errSetPower       = "failed to set power"
	errSetTemperature = "failed to set target temperature"
	errGetState       = "failed to load state"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// commandErrorStatus maps command errors onto HTTP codes: local validation
// is the caller's fault, an unreachable device is an upstream failure.
func commandErrorStatus(err error) int {
	switch {
	case service.IsValidation(err):
		return http.StatusBadRequest
	case device.IsConnectivity(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Respond with a status and include the current controller snapshot.
// The snapshot may still predate the command; the forced refresh lands async.
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTO for the power command.
type powerRequest struct {
	On *bool `json:"on" binding:"required"`
}

// Request DTO for the target temperature command.
type temperatureRequest struct {
	TargetTempC *float64 `json:"target_temp_c" binding:"required"`
}

// SetPowerRequest is an exported model for Swagger docs of the power payload.
type SetPowerRequest struct {
	// Desired power mode
	On bool `json:"on" example:"true"`
}

// SetTemperatureRequest is an exported model for Swagger docs of the temperature payload.
type SetTemperatureRequest struct {
	// Target temperature in Celsius, within [16, 32]
	TargetTempC float64 `json:"target_temp_c" example:"21.5"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get heater state
// @Description  Last-known snapshot plus error flag; status is kept through poll failures.
// @Tags         heater
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/heater/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "heater_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Set power mode
// @Description  Turns the heater on or off, then forces a refresh.
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body   SetPowerRequest  true  "Power payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/power [post]
// @Security     BearerAuth
func (h *Handler) setPower(c *gin.Context) {
	var req powerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Commands.SetPower(ctx, *req.On); err != nil {
		h.logAndJSONError(c, commandErrorStatus(err), errSetPower, "heater_set_power_failed", err, "on", *req.On)
		return
	}
	h.respondWithStatusAndState(c, statusPowerSet, gin.H{"on": *req.On})
}

// @Summary      Set target temperature
// @Description  Accepts values in [16, 32] °C; out-of-range is rejected without contacting the device.
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body   SetTemperatureRequest  true  "Temperature payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/temperature [post]
// @Security     BearerAuth
func (h *Handler) setTemperature(c *gin.Context) {
	var req temperatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if err := h.services.Commands.SetTargetTemperature(ctx, *req.TargetTempC); err != nil {
		if service.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, commandErrorStatus(err), errSetTemperature, "heater_set_temperature_failed", err, "target_c", *req.TargetTempC)
		return
	}
	h.respondWithStatusAndState(c, statusTempSet, gin.H{"target_temp_c": *req.TargetTempC})
}
