package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	maxActivityLimit = 1000
)

var errActivityRange = errors.New("'from' must be <= 'to'")

// activityQuery is the parsed form of GET /api/v1/logs.
type activityQuery struct {
	filter service.LogFilter
	limit  int // 0 returns every match
}

// activityPage is what the dashboard renders: the matching entries plus the
// newest one, which doubles as the status bar line.
type activityPage struct {
	Count   int                    `json:"count"`
	Latest  *models.ActivityEntry  `json:"latest,omitempty"`
	Entries []models.ActivityEntry `json:"entries"`
}

// @Summary      List activity
// @Description  Dashboard status messages, oldest first. 'from'/'to' accept RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'; a date-only 'to' covers the whole day. 'limit' keeps only the newest N matches.
// @Tags         activity
// @Produce      json
// @Param        from   query   string  false  "Start of range"  example(2025-08-01)
// @Param        to     query   string  false  "End of range, date-only means end of day"  example(2025-08-31)
// @Param        type   query   string  false  "Entry type"  Enums(SUCCESS,ERROR,INFO)
// @Param        limit  query   int     false  "Newest N entries"
// @Success      200    {object}  activityPage
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	q, err := bindActivityQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.services.ActivityLog.List(c.Request.Context(), q.filter)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load activity", "activity_list_failed", err,
			"from", q.filter.From, "to", q.filter.To, "type", q.filter.Type)
		return
	}

	c.JSON(http.StatusOK, newActivityPage(entries, q.limit))
}

func bindActivityQuery(c *gin.Context) (activityQuery, error) {
	var q activityQuery

	q.filter.Type = strings.ToUpper(strings.TrimSpace(c.Query("type")))
	switch q.filter.Type {
	case "", models.ActivitySuccess, models.ActivityError, models.ActivityInfo:
	default:
		return q, fmt.Errorf("invalid 'type' %q; use SUCCESS, ERROR or INFO", c.Query("type"))
	}

	if s := c.Query("from"); s != "" {
		from, err := parseQueryTime(s)
		if err != nil {
			return q, errors.New("invalid 'from' time; use RFC3339 or YYYY-MM-DD")
		}
		q.filter.From = from
	}
	if s := c.Query("to"); s != "" {
		to, err := parseQueryTime(s)
		if err != nil {
			return q, errors.New("invalid 'to' time; use RFC3339 or YYYY-MM-DD")
		}
		if !strings.ContainsAny(s, "T ") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		q.filter.To = to
	}
	if !q.filter.From.IsZero() && !q.filter.To.IsZero() && q.filter.From.After(q.filter.To) {
		return q, errActivityRange
	}

	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxActivityLimit {
			return q, fmt.Errorf("invalid 'limit'; use 1..%d", maxActivityLimit)
		}
		q.limit = n
	}
	return q, nil
}

func newActivityPage(entries []models.ActivityEntry, limit int) activityPage {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	page := activityPage{Count: len(entries), Entries: entries}
	if n := len(entries); n > 0 {
		latest := entries[n-1]
		page.Latest = &latest
	}
	return page
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" and returns UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
