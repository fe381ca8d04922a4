package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errStartSimulation  = "failed to start simulation"
	errAlreadyRunning   = "simulation already running"
	errStopSimulation   = "failed to stop simulation"
	errSimulationStatus = "failed to load simulation status"
)

// @Summary      Start simulation
// @Tags         simulation
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/simulation/start [post]
func (h *Handler) startSimulation(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Simulation.Start(ctx); err != nil {
		code := httpStatusFor(err)
		msg := errStartSimulation
		if code == http.StatusConflict {
			msg = errAlreadyRunning
		}
		h.logAndJSONError(c, code, msg, "simulation_start_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStarted, gin.H{})
}

// @Summary      Stop simulation
// @Description  Stopping a stopped simulation succeeds.
// @Tags         simulation
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/simulation/stop [post]
func (h *Handler) stopSimulation(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.services.Simulation.Stop(ctx); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errStopSimulation, "simulation_stop_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStopped, gin.H{})
}

// @Summary      Simulation status
// @Tags         simulation
// @Produce      json
// @Success      200  {object}  service.SimulationStatus
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/simulation/status [get]
func (h *Handler) simulationStatus(c *gin.Context) {
	st, err := h.services.Simulation.Status(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSimulationStatus, "simulation_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
