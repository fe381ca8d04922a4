package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"water_tank/internal/models"
	"water_tank/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errRange       = "'from' must be <= 'to'"
	errTypeInvalid = "unknown 'type'; use one of: "
	errListLogs    = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List audit events
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range"  example(2025-08-01)
// @Param        to    query   string  false  "End of range; date-only treated as end of day"  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(PUMP_ON,PUMP_OFF,CONFIG_CHANGE,NIGHT_LOCKOUT,AUTO_CUTOFF,CRITICAL_LEVEL,SIM_START,SIM_STOP)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string  "bad time, range, or type"
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
func (h *Handler) getLogs(c *gin.Context) {
	filter, msg := parseLogFilter(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	events, err := h.services.EventLog.List(c.Request.Context(), filter)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListLogs, "logs_list_failed", err,
			"from", filter.From, "to", filter.To, "type", filter.Type)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseLogFilter builds a LogFilter from the query string. A non-empty
// message is the 400 body.
func parseLogFilter(c *gin.Context) (service.LogFilter, string) {
	var f service.LogFilter
	if qs := c.Query("from"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, errFromInvalid
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, errToInvalid
		}
		if isDateOnly(qs) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, errRange
	}
	if qs := strings.ToUpper(strings.TrimSpace(c.Query("type"))); qs != "" {
		if !models.IsEventType(qs) {
			return f, errTypeInvalid + strings.Join(models.EventTypes, ", ")
		}
		f.Type = qs
	}
	return f, ""
}

// parseQueryTime accepts RFC3339, date-time and date-only forms, normalized to UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
