package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-planner/internal/budget"
)

// SyncLinkedItems handles POST /v1/budget/links/:resource/:id/sync.  The
// body carries the rates the resource had before its edit.
func (h *ProductionHandler) SyncLinkedItems(c echo.Context) error {
	kind, err := budget.ParseResource(c.Param("resource"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	id := c.Param("id")
	var ch budget.Changes
	if err := c.Bind(&ch); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Linker.Sync(c.Request().Context(), kind, id, ch)
	if err != nil {
		return h.fail(c, err, string(kind))
	}
	h.publish(c, "budget.sync_linked", string(kind), id, map[string]int{
		"items": res.Items, "described": res.Described, "rated": res.Rated, "drifted": res.Drifted,
	})
	return c.JSON(http.StatusOK, res)
}

// UnlinkItems handles DELETE /v1/budget/links/:resource/:id.  Items stay in
// the budget with the link cleared.
func (h *ProductionHandler) UnlinkItems(c echo.Context) error {
	kind, err := budget.ParseResource(c.Param("resource"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	id := c.Param("id")
	n, err := h.Linker.Unlink(c.Request().Context(), kind, id)
	if err != nil {
		return h.fail(c, err, string(kind))
	}
	h.publish(c, "budget.unlink", string(kind), id, map[string]int{"unlinked": n})
	return c.JSON(http.StatusOK, echo.Map{"unlinked": n})
}

// SyncSourceFromItem handles POST /v1/budget/items/:id/sync-source.
func (h *ProductionHandler) SyncSourceFromItem(c echo.Context) error {
	id := c.Param("id")
	res, err := h.Linker.SyncSourceFromItem(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "budget item")
	}
	applied := 0
	if res.Applied {
		applied = 1
	}
	h.publish(c, "budget.sync_source", "budget_item", id, map[string]int{"applied": applied})
	return c.JSON(http.StatusOK, res)
}

// SyncSceneBudget handles POST /v1/scenes/:id/budget.  category_id is
// optional.
func (h *ProductionHandler) SyncSceneBudget(c echo.Context) error {
	id := c.Param("id")
	var body struct {
		CategoryID string `json:"category_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Generator.SyncSceneBudget(c.Request().Context(), id, body.CategoryID)
	if err != nil {
		return h.fail(c, err, "scene or category")
	}
	h.publish(c, "budget.sync_scene", "scene", id, map[string]int{
		"created": res.Created, "existing": res.Existing, "skipped": res.Skipped,
	})
	status := http.StatusOK
	if res.Created > 0 {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}
