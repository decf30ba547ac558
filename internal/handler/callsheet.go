package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-planner/internal/callsheet"
)

// GetCallSheet handles GET /v1/shooting-days/:id/call-sheet and returns
// the gathered records together with the derived sheet.
func (h *ProductionHandler) GetCallSheet(c echo.Context) error {
	data, err := h.CallSheets.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err, "shooting day")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": data, "sheet": callsheet.Build(data)})
}
