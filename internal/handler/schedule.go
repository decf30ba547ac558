package handler

import (
	"net/http" // http defines status codes

	"github.com/labstack/echo/v4" // echo provides the web context and JSON helpers

	"github.com/iliyamo/production-planner/internal/schedule" // schedule runs the event sync
)

type scheduleRequest struct {
	ShootingDayIDs *[]string `json:"shooting_day_ids"` // nil means "use the scene's days"
}

func scheduleCounts(r schedule.Result) map[string]int {
	return map[string]int{
		"created":   r.Created,
		"updated":   r.Updated,
		"unchanged": r.Unchanged,
		"removed":   r.Removed,
		"skipped":   r.Skipped,
		"failed":    r.Failed,
	}
}

// SyncShot handles POST /v1/shots/:id/schedule.  The body lists the
// shooting days the shot should appear on.
func (h *ProductionHandler) SyncShot(c echo.Context) error { // begin SyncShot handler
	id := c.Param("id")
	var body scheduleRequest
	if err := c.Bind(&body); err != nil { // bind incoming JSON
		return badRequest(c, "invalid request body")
	}
	if body.ShootingDayIDs == nil || len(*body.ShootingDayIDs) == 0 { // a shot needs explicit days
		return badRequest(c, "shooting_day_ids is required")
	}
	res, err := h.Schedule.SyncShot(c.Request().Context(), id, *body.ShootingDayIDs)
	if err != nil {
		return h.fail(c, err, "shot")
	}
	h.publish(c, "schedule.sync_shot", "shot", id, scheduleCounts(res)) // best effort, never fails the request
	return c.JSON(http.StatusOK, res)
}

// ClearShot handles DELETE /v1/shots/:id/schedule.
func (h *ProductionHandler) ClearShot(c echo.Context) error {
	id := c.Param("id")
	n, err := h.Schedule.ClearShot(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "shot")
	}
	h.publish(c, "schedule.clear_shot", "shot", id, map[string]int{"removed": n})
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}

// SyncScene handles POST /v1/scenes/:id/schedule.  Without
// shooting_day_ids the scene's own days are used.
func (h *ProductionHandler) SyncScene(c echo.Context) error { // begin SyncScene handler
	id := c.Param("id")
	var body scheduleRequest
	if err := c.Bind(&body); err != nil { // bind incoming JSON
		return badRequest(c, "invalid request body")
	}
	var days []string // nil falls back to the stored scene days
	if body.ShootingDayIDs != nil {
		days = *body.ShootingDayIDs
	}
	res, err := h.Schedule.SyncScene(c.Request().Context(), id, days)
	if err != nil {
		return h.fail(c, err, "scene")
	}
	h.publish(c, "schedule.sync_scene", "scene", id, scheduleCounts(res))
	return c.JSON(http.StatusOK, res)
}

// ClearScene handles DELETE /v1/scenes/:id/schedule.
func (h *ProductionHandler) ClearScene(c echo.Context) error {
	id := c.Param("id")
	n, err := h.Schedule.ClearScene(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "scene")
	}
	h.publish(c, "schedule.clear_scene", "scene", id, map[string]int{"removed": n})
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}

// FindConflicts handles POST /v1/shooting-days/:id/conflicts.  It reports
// which of the given resources are already booked on the day.
func (h *ProductionHandler) FindConflicts(c echo.Context) error {
	var q schedule.ConflictQuery
	if err := c.Bind(&q); err != nil {
		return badRequest(c, "invalid request body")
	}
	q.ShootingDayID = c.Param("id") // path wins over any body value
	report, err := h.Conflicts.FindConflicts(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, err, "shooting day")
	}
	return c.JSON(http.StatusOK, echo.Map{"conflict": !report.Empty(), "report": report})
}
