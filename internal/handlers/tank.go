package handlers

import (
	"errors"
	"net/http"

	"water_tank/internal/driver"
	"water_tank/internal/engine"
	"water_tank/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK            = "ok"
	statusStarted       = "started"
	statusStopped       = "stopped"
	statusPumpSet       = "pump_set"
	statusConfigUpdated = "config_updated"

	errGetState        = "failed to load state"
	errSetPump         = "failed to set pump"
	errSetConfig       = "failed to update config"
	errInvalidBodyPref = "invalid body: "
)

// httpStatusFor maps domain errors to response codes.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, driver.ErrAlreadyRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
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

type pumpRequest struct {
	On *bool `json:"on" binding:"required"`
}

// PumpRequest is an exported model for Swagger docs of the setPump payload.
type PumpRequest struct {
	// Desired pump state
	On bool `json:"on" example:"true"`
}

// ConfigRequest is the setConfig payload; absent fields are unchanged.
type ConfigRequest struct {
	AutoCutoff *bool    `json:"auto_cutoff,omitempty" example:"true"`
	NightLimit *bool    `json:"night_limit,omitempty" example:"true"`
	Threshold  *float64 `json:"threshold,omitempty" example:"20"`
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

// @Summary      Get tank state
// @Tags         tank
// @Produce      json
// @Success      200  {object}  models.TankReading
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/tank/state [get]
func (h *Handler) getState(c *gin.Context) {
	ctx := c.Request.Context()
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "tank_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Switch pump
// @Description  Accepted at any time; night lockout and auto cut-off apply on the next tick.
// @Tags         tank
// @Accept       json
// @Produce      json
// @Param        body  body   PumpRequest  true  "Pump payload"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/tank/pump [post]
func (h *Handler) setPump(c *gin.Context) {
	var req pumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.services.Tank.SetPump(ctx, *req.On); err != nil {
		h.logAndJSONError(c, httpStatusFor(err), errSetPump, "tank_set_pump_failed", err, "on", *req.On)
		return
	}
	h.respondWithStatusAndState(c, statusPumpSet, gin.H{"pump_on": *req.On})
}

// @Summary      Update safety configuration
// @Description  threshold must be within [5,40]; the update is all-or-nothing.
// @Tags         tank
// @Accept       json
// @Produce      json
// @Param        body  body   ConfigRequest  true  "Config payload"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/tank/config [put]
func (h *Handler) setConfig(c *gin.Context) {
	var req ConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	ctx := c.Request.Context()
	_, err := h.services.Tank.SetConfig(ctx, service.ConfigParams{
		AutoCutoff: req.AutoCutoff,
		NightLimit: req.NightLimit,
		Threshold:  req.Threshold,
	})
	if err != nil {
		code := httpStatusFor(err)
		msg := errSetConfig
		if code == http.StatusBadRequest {
			msg = err.Error()
		}
		h.logAndJSONError(c, code, msg, "tank_set_config_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusConfigUpdated, gin.H{})
}
